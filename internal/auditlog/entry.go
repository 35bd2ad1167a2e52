// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auditlog

import "time"

// TimestampFormat is the layout of Entry.Timestamp. Times are always UTC.
const TimestampFormat = "2006-01-02 15:04:05 UTC"

// UnknownPlayer replaces a missing display name.
const UnknownPlayer = "Unknown"

// Entry is one recorded chat command.
type Entry struct {
	Timestamp   string `json:"Timestamp"`
	PlayerName  string `json:"PlayerName"`
	SteamID     uint64 `json:"SteamId"`
	Command     string `json:"Command"`
	FullMessage string `json:"FullMessage"`
}

// FormatTimestamp renders t in TimestampFormat.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}
