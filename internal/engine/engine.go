// Copyright © 2022 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"context"

	"github.com/kaleido-io/agentledger/internal/apiserver"
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/database/difactory"
	"github.com/kaleido-io/agentledger/internal/enrichment"
	"github.com/kaleido-io/agentledger/internal/enrichment/uri"
	"github.com/kaleido-io/agentledger/internal/hashchain"
	"github.com/kaleido-io/agentledger/internal/ingest"
	"github.com/kaleido-io/agentledger/internal/ledger/lifactory"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/metrics"
	"github.com/kaleido-io/agentledger/internal/sequencer"
	"github.com/kaleido-io/agentledger/internal/verifier"
	"github.com/kaleido-io/agentledger/pkg/database"
	"github.com/kaleido-io/agentledger/pkg/ledger"
)

var (
	databaseConfig = config.NewPluginConfig("database")
	ledgerConfig   = config.NewPluginConfig("ledger")
	fetcherConfig  = config.NewPluginConfig("enrichment.fetcher")
)

// Engine owns the plugins and components of the indexer, and runs them until the context is cancelled
type Engine interface {
	// Init loads the plugins and builds the components. The cancel function is invoked if a component fails fatally.
	Init(ctx context.Context, cancelCtx context.CancelFunc) error

	// Start launches enrichment, verification, ingestion and the admin server
	Start() error

	// WaitStop waits for everything started to exit, after the context is cancelled, then closes the plugins
	WaitStop()

	// Backfill assigns sequences to every unsequenced record, without starting anything
	Backfill(ctx context.Context) (int, error)
}

type enrichmentQueue interface {
	enrichment.Enqueuer
	Start()
	WaitStop()
}

type engine struct {
	ctx        context.Context
	cancelCtx  context.CancelFunc
	started    bool
	apiDone    chan struct{}
	database   database.Plugin
	ledger     ledger.Plugin
	fetcher    enrichment.Fetcher
	metrics    metrics.Manager
	tracker    hashchain.Tracker
	sequencer  sequencer.Sequencer
	verifier   verifier.Verifier
	enrichment enrichmentQueue
	poller     ingest.Poller
	subscriber ingest.Subscriber
	apiServer  apiserver.Server
}

func NewEngine() Engine {
	return &engine{}
}

func initConfig() {
	difactory.InitPrefix(databaseConfig)
	lifactory.InitPrefix(ledgerConfig)
	uri.InitPrefix(fetcherConfig)
	apiserver.InitConfig()
}

func (e *engine) Init(ctx context.Context, cancelCtx context.CancelFunc) (err error) {
	e.ctx = ctx
	e.cancelCtx = cancelCtx
	initConfig()
	err = e.initPlugins(ctx)
	if err == nil {
		err = e.initComponents(ctx)
	}
	return err
}

func (e *engine) initPlugins(ctx context.Context) (err error) {
	if e.database == nil {
		if e.database, err = e.initDatabasePlugin(ctx); err != nil {
			return err
		}
	}

	if e.ledger == nil {
		if e.ledger, err = e.initLedgerPlugin(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (e *engine) initDatabasePlugin(ctx context.Context) (database.Plugin, error) {
	pluginType := config.GetString(config.DatabaseType)
	plugin, err := difactory.GetPlugin(ctx, pluginType)
	if err != nil {
		return nil, err
	}
	return plugin, plugin.Init(ctx, databaseConfig.SubPrefix(pluginType))
}

func (e *engine) initLedgerPlugin(ctx context.Context) (ledger.Plugin, error) {
	pluginType := config.GetString(config.LedgerType)
	plugin, err := lifactory.GetPlugin(ctx, pluginType)
	if err != nil {
		return nil, err
	}
	return plugin, plugin.Init(ctx, ledgerConfig.SubPrefix(pluginType))
}

func (e *engine) initComponents(ctx context.Context) (err error) {
	if e.metrics == nil {
		e.metrics = metrics.NewMetricsManager(ctx)
	}

	if e.tracker == nil {
		if e.tracker, err = hashchain.NewTracker(ctx, e.database); err != nil {
			return err
		}
	}

	if e.sequencer == nil {
		if e.sequencer, err = sequencer.NewSequencer(ctx, e.database, e.tracker); err != nil {
			return err
		}
	}

	if e.verifier == nil {
		if e.verifier, err = verifier.NewVerifier(ctx, e.database, e.ledger, e.tracker, e.sequencer, e.metrics); err != nil {
			return err
		}
	}

	// A nil queue must stay a nil interface, so the ingesters skip enrichment
	var enqueuer enrichment.Enqueuer
	if e.enrichment == nil && config.GetBool(config.EnrichmentEnabled) {
		if e.enrichment, err = e.initEnrichment(ctx); err != nil {
			return err
		}
	}
	if e.enrichment != nil {
		enqueuer = e.enrichment
	}

	if e.poller == nil {
		if e.poller, err = ingest.NewPoller(ctx, e.database, e.ledger, e.sequencer, enqueuer, e.metrics); err != nil {
			return err
		}
	}

	if e.subscriber == nil {
		if e.subscriber, err = ingest.NewSubscriber(ctx, e.database, e.ledger, e.sequencer, enqueuer, e.metrics, e.poller); err != nil {
			return err
		}
	}

	if e.apiServer == nil {
		if e.apiServer, err = apiserver.NewAPIServer(ctx, e.database, e.verifier, e.tracker); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) initEnrichment(ctx context.Context) (enrichmentQueue, error) {
	if e.fetcher == nil {
		fetcher, err := uri.NewFetcher(ctx, fetcherConfig)
		if err != nil {
			return nil, err
		}
		e.fetcher = fetcher
	}
	q, err := enrichment.NewQueue(ctx, "uri", e.fetcher, enrichment.NewDatabaseStore(e.database), e.metrics)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (e *engine) Start() (err error) {
	if e.enrichment != nil {
		e.enrichment.Start()
	}
	e.started = true
	err = e.verifier.Start()
	if err == nil {
		err = e.poller.Start()
	}
	if err == nil {
		err = e.subscriber.Start()
	}
	if err == nil {
		e.apiDone = make(chan struct{})
		go e.serveAPI()
	}
	return err
}

func (e *engine) serveAPI() {
	defer close(e.apiDone)
	if err := e.apiServer.Serve(e.ctx); err != nil {
		log.L(e.ctx).Errorf("Admin server failed: %s", err)
		e.cancelCtx()
	}
}

func (e *engine) WaitStop() {
	if e.started {
		e.subscriber.WaitStop()
		e.poller.WaitStop()
		e.verifier.WaitStop()
		if e.enrichment != nil {
			e.enrichment.WaitStop()
		}
		if e.apiDone != nil {
			<-e.apiDone
		}
		e.started = false
	}
	if e.ledger != nil {
		e.ledger.Close()
		e.ledger = nil
	}
	if e.database != nil {
		e.database.Close()
		e.database = nil
	}
}

func (e *engine) Backfill(ctx context.Context) (int, error) {
	return e.sequencer.BackfillAll(ctx)
}
