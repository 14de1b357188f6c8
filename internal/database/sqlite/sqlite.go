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

package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/database/sqlcommon"
	"github.com/kaleido-io/agentledger/pkg/database"

	// Import the pure Go SQLite driver
	_ "modernc.org/sqlite"
)

// SQLite is a single-process store. Writers to a scope are serialized by the in-process lock only.
type SQLite struct {
	sqlcommon.SQLCommon
}

func (sqlite *SQLite) Init(ctx context.Context, prefix config.Prefix) error {
	capabilities := &database.Capabilities{}
	return sqlite.SQLCommon.Init(ctx, sqlite, prefix, capabilities)
}

func (sqlite *SQLite) InitPrefix(prefix config.Prefix) {
	sqlite.SQLCommon.InitPrefix(sqlite, prefix)
	// SQLite only supports one writer
	prefix.AddKnownKey(sqlcommon.SQLConfMaxConnections, 1)
}

func (sqlite *SQLite) Name() string {
	return "sqlite"
}

func (sqlite *SQLite) MigrationsDir() string {
	return sqlite.Name()
}

func (sqlite *SQLite) Features() sqlcommon.SQLFeatures {
	features := sqlcommon.DefaultSQLProviderFeatures()
	features.PlaceholderFormat = sq.Dollar
	return features
}

func (sqlite *SQLite) ApplyInsertQueryCustomizations(insert sq.InsertBuilder, requestConflictEmptyResult bool) (sq.InsertBuilder, bool) {
	if requestConflictEmptyResult {
		// Conflicts are detected by the affected row count
		return insert.Suffix(" ON CONFLICT DO NOTHING"), false
	}
	return insert, false
}

func (sqlite *SQLite) Open(url string) (*sql.DB, error) {
	return sql.Open(sqlite.Name(), url)
}

func (sqlite *SQLite) GetMigrationDriver(db *sql.DB) (migratedb.Driver, error) {
	return migratesqlite.WithInstance(db, &migratesqlite.Config{})
}
