// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package recorder_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/chatcmdlog/internal/auditlog"
	"github.com/holomush/chatcmdlog/internal/classifier"
	"github.com/holomush/chatcmdlog/internal/config"
	"github.com/holomush/chatcmdlog/internal/recorder"
	"github.com/holomush/chatcmdlog/internal/store"
)

type roster map[uint64]classifier.PrivilegeLevel

func (r roster) Privilege(_ context.Context, id uint64) (classifier.PrivilegeLevel, bool) {
	level, ok := r[id]
	return level, ok
}

var _ = Describe("Recorder lifecycle", func() {
	var (
		ctx       context.Context
		configDir string
		dataDir   string
		players   roster
	)

	start := func() *recorder.Recorder {
		configs, err := store.NewFileStore(configDir)
		Expect(err).NotTo(HaveOccurred())
		data, err := store.NewFileStore(dataDir)
		Expect(err).NotTo(HaveOccurred())

		rec, err := recorder.New(config.NewManager(configs), auditlog.New(data), players)
		Expect(err).NotTo(HaveOccurred())
		rec.Init(ctx)
		return rec
	}

	send := func(rec *recorder.Recorder, id uint64, message string) classifier.Decision {
		decision, err := rec.OnPlayerChat(ctx, recorder.ChatEvent{PlayerID: id, PlayerName: "Wren", Message: message})
		Expect(err).NotTo(HaveOccurred())
		return decision
	}

	BeforeEach(func() {
		ctx = context.Background()
		root := GinkgoT().TempDir()
		configDir = filepath.Join(root, "config")
		dataDir = filepath.Join(root, "data")
		players = roster{1: classifier.PrivilegeRegular, 2: classifier.PrivilegeOwner}
	})

	Context("on first start", func() {
		It("writes the default configuration document", func() {
			rec := start()

			Expect(rec.Config()).To(Equal(config.Default()))
			Expect(filepath.Join(configDir, config.DocumentName+".json")).To(BeAnExistingFile())
			Expect(filepath.Join(dataDir, auditlog.DocumentName+".json")).To(BeAnExistingFile())
		})
	})

	Context("across restarts", func() {
		It("keeps recorded commands", func() {
			rec := start()
			Expect(send(rec, 1, "/home set").Record).To(BeTrue())
			Expect(send(rec, 2, "/kit").Record).To(BeFalse())
			before := rec.Entries()

			restarted := start()

			Expect(restarted.Entries()).To(Equal(before))
			Expect(restarted.Entries()).To(HaveLen(1))
			Expect(restarted.Entries()[0].Command).To(Equal("home"))
		})
	})

	Context("when the server starts a new save", func() {
		It("wipes five entries in memory and on disk", func() {
			rec := start()
			for range 5 {
				send(rec, 1, "/tp")
			}
			Expect(rec.Entries()).To(HaveLen(5))

			wiped, err := rec.OnNewSave(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(wiped).To(BeTrue())
			Expect(rec.Entries()).To(BeEmpty())
			Expect(start().Entries()).To(BeEmpty())
		})
	})

	Context("when the operator edits the log mode", func() {
		It("repairs an invalid value and persists it", func() {
			configs, err := store.NewFileStore(configDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(configs.Write(ctx, config.DocumentName, []byte(
				`{"Log Mode (PlayersOnly/AdminsOnly/Everyone)": "Moderators"}`,
			))).To(Succeed())

			rec := start()

			Expect(rec.Config().LogMode).To(Equal(config.LogPlayersOnly))
			raw, err := configs.Read(ctx, config.DocumentName)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`"PlayersOnly"`))
		})

		It("records staff commands after a reload to Everyone", func() {
			rec := start()
			Expect(send(rec, 2, "/ban x").Record).To(BeFalse())

			cfg := rec.Config()
			cfg.LogMode = config.LogEveryone
			raw, err := config.Marshal(cfg)
			Expect(err).NotTo(HaveOccurred())
			configs, err := store.NewFileStore(configDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(configs.Write(ctx, config.DocumentName, raw)).To(Succeed())

			Expect(rec.Reload(ctx)).To(Succeed())

			Expect(send(rec, 2, "/ban x").Command).To(Equal("ban"))
		})
	})

	Context("when a player disconnects mid-session", func() {
		It("ignores their chat", func() {
			rec := start()
			delete(players, 1)

			decision := send(rec, 1, "/home")

			Expect(decision.Reason).To(Equal(recorder.ReasonNoConnection))
			Expect(rec.Entries()).To(BeEmpty())
		})
	})
})
