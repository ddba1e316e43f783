package main

import (
	"github.com/fennec-audio/muse/internal/catalogue"
	"github.com/fennec-audio/muse/internal/config"
	"github.com/fennec-audio/muse/internal/engine"
	"github.com/fennec-audio/muse/internal/mpdplayer"
	"github.com/fennec-audio/muse/internal/muselog"
	"github.com/fennec-audio/muse/internal/pathmapper"
	"github.com/fennec-audio/muse/internal/playeradapter"
	"github.com/fennec-audio/muse/internal/queue"
	"github.com/fennec-audio/muse/internal/scorer"
	"github.com/fennec-audio/muse/internal/supervisor"
	"github.com/fennec-audio/muse/internal/tracker"
)

// app bundles everything a command needs to construct an engine.Engine,
// plus the raw catalogue and player connection so a command that doesn't
// go through the engine (list) can still reach the catalogue.
type app struct {
	cfg    *config.Config
	cat    catalogue.Catalogue
	player *mpdplayer.Client
	engine *engine.Engine
}

// newApp loads config, opens the catalogue and the MPD connection, and
// wires every core component together. withTracker controls whether a
// tracker.Tracker is constructed (only the daemon needs one).
func newApp(withTracker bool) (*app, error) {
	muselog.Init(muselog.Options{Debug: debugLog})

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dbPath, err := config.CataloguePath()
	if err != nil {
		return nil, err
	}
	cat, err := catalogue.Open(dbPath)
	if err != nil {
		return nil, err
	}

	player, err := mpdplayer.Dial(cfg.MPD.Address)
	if err != nil {
		cat.Close()
		return nil, err
	}

	mapper := pathmapper.New(cfg.PlayerConfigPaths, player, cat)
	sc := scorer.New(cfg.Scoring)
	qe := queue.New(cat, sc, cfg.Queue, cfg.Scoring.CorrectionFactor)
	adapter := playeradapter.New(player)

	trackerCfg := tracker.Config{
		ListenRatio:       cfg.Tracker.ListenRatio,
		MinListenSeconds:  cfg.Tracker.MinListenSeconds,
		TouchDelaySeconds: cfg.Tracker.TouchDelaySeconds,
		RetryDelaySeconds: cfg.Tracker.RetryDelaySeconds,
	}

	var tr *tracker.Tracker
	if withTracker {
		tr = tracker.New(adapter, cat, mapper, trackerCfg, nil)
	}

	identityPath, err := config.IdentityFilePath()
	if err != nil {
		return nil, err
	}
	sup := supervisor.New(identityPath)

	eng := engine.New(cat, mapper, sc, qe, adapter, tr, sup, trackerCfg)
	return &app{cfg: cfg, cat: cat, player: player, engine: eng}, nil
}

func (a *app) Close() {
	a.player.Close()
	a.cat.Close()
}
