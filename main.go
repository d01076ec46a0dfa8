package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"perch/http/syncserver"
	"perch/irc/engine"
	"perch/irc/networks"
	"perch/irc/sts"
	"perch/logger"
	"perch/perchbase"
	"perch/sessions"
	"perch/settings"
)

// historyStore reports whether message playback can be served. This
// deployment keeps history in perchbase, so playback is available
// whenever the store is open.
type historyStore struct{}

func (historyStore) CanProvide() bool {
	return perchbase.Data != nil
}

func main() {
	configPath := flag.String("config", "config.toml", "path to the configuration file")
	flag.Parse()

	config, err := settings.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Init(config.Logging)

	if err := perchbase.Init(config.Store.Path); err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	defer perchbase.Close()

	stsStore := sts.NewStore()
	stsStore.Load()

	deps := networks.Deps{
		Config:        config,
		STS:           stsStore,
		EngineFactory: engine.NewGirc,
		MessageStore:  historyStore{},
	}

	directory := sessions.NewDirectory(perchbase.UserStore{}, deps)

	if config.Sync.Enabled {
		server := syncserver.New(directory)
		go func() {
			if err := server.Serve(config.Sync.Listen); err != nil {
				logger.Error("Sync server stopped", "error", err)
			}
		}()
	}

	directory.LoadAll()

	for _, session := range directory.Sessions() {
		for _, network := range session.Networks {
			if network.UserDisconnected {
				continue
			}
			if err := network.Connect(); err != nil {
				logger.Network(session.Name, network.Name).Error("Not connecting", "error", err)
			}
		}
	}

	logger.Info("Perch is up", "accounts", len(directory.Sessions()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	for _, session := range directory.Sessions() {
		session.Shutdown(config.Perch.LeaveMessage)
		if err := session.SaveNow(); err != nil {
			logger.Account(session.Name).Error("Error saving account", "error", err)
		}
	}
	stsStore.Save()
}
