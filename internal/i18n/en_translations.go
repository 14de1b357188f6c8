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

package i18n

import "net/http"

//revive:disable
var (
	MsgConfigFailed                = ffm("AL10101", "Failed to read config: %s")
	MsgJSONDecodeFailed            = ffm("AL10102", "Failed to decode input JSON", http.StatusBadRequest)
	MsgAPIServerStartFailed        = ffm("AL10103", "Unable to start listener on %s: %s")
	MsgResponseMarshalError        = ffm("AL10104", "Failed to serialize response data", http.StatusBadRequest)
	Msg404NotFound                 = ffm("AL10105", "Not found", http.StatusNotFound)
	MsgContextCanceled             = ffm("AL10106", "Context cancelled")
	MsgUnknownDatabasePlugin       = ffm("AL10107", "Unknown database plugin '%s'")
	MsgUnknownLedgerPlugin         = ffm("AL10108", "Unknown ledger plugin '%s'")
	MsgMissingPluginConfig         = ffm("AL10109", "Missing configuration '%s' for %s")
	MsgConfigValueOutOfRange       = ffm("AL10110", "Configuration '%s' value %v is outside the valid range [%v,%v]")
	MsgConfigValueBelowFloor       = ffm("AL10111", "Configuration '%s' value %s is below the minimum of %s")
	MsgInvalidDuration             = ffm("AL10112", "Configuration '%s' value '%s' is not a valid duration")
	MsgInvalidSize                 = ffm("AL10113", "Configuration '%s' value '%s' is not a valid size")
	MsgInitFailed                  = ffm("AL10114", "Initialization of component '%s' failed: missing dependencies")
	MsgDBInitFailed                = ffm("AL10120", "Database initialization failed")
	MsgDBBeginFailed               = ffm("AL10121", "Database begin transaction failed")
	MsgDBQueryFailed               = ffm("AL10122", "Database query failed")
	MsgDBInsertFailed              = ffm("AL10123", "Database insert failed")
	MsgDBUpdateFailed              = ffm("AL10124", "Database update failed")
	MsgDBDeleteFailed              = ffm("AL10125", "Database delete failed")
	MsgDBCommitFailed              = ffm("AL10126", "Database commit failed")
	MsgDBMigrationFailed           = ffm("AL10127", "Database migration failed")
	MsgDBReadErr                   = ffm("AL10128", "Database resultset read error from table '%s'")
	MsgDBQueryBuildFailed          = ffm("AL10129", "Database query builder failed")
	MsgDBLockFailed                = ffm("AL10130", "Database scope lock failed for '%s'")
	MsgDBNoTransaction             = ffm("AL10131", "Operation '%s' requires a database transaction")
	MsgScanFailed                  = ffm("AL10132", "Failed to restore type '%T' into '%T'")
	MsgInvalidWrongLenB32          = ffm("AL10133", "Byte length must be 32 (64 hex characters)")
	MsgInvalidHex                  = ffm("AL10134", "Invalid hex supplied")
	MsgTimeParseFail               = ffm("AL10135", "Cannot parse time as RFC3339, Unix, or UnixNano: '%s'", http.StatusBadRequest)
	MsgUnknownEventKind            = ffm("AL10140", "Unknown ledger event kind '%s'")
	MsgEventMissingField           = ffm("AL10141", "Ledger event of kind '%s' is missing field '%s'")
	MsgEventInvalid                = ffm("AL10142", "Ledger event at slot %d signature '%s' is invalid: %s")
	MsgChainFinalizedConflict      = ffm("AL10143", "Hash chain for scope '%s' cannot be rebuilt: finalized record %d would change digest")
	MsgChainBroken                 = ffm("AL10144", "Hash chain for scope '%s' is broken at position %d", http.StatusConflict)
	MsgRecordNotFound              = ffm("AL10145", "Record %d not found", http.StatusNotFound)
	MsgRecordNotOrphaned           = ffm("AL10146", "Record %d is in status '%s' and cannot be readmitted")
	MsgRecordTransitionLost        = ffm("AL10147", "Record %d was not in expected status '%s'")
	MsgLedgerRPCError              = ffm("AL10150", "Ledger RPC '%s' failed: %s")
	MsgLedgerRPCReturnedError      = ffm("AL10151", "Ledger RPC '%s' returned error %d: %s")
	MsgLedgerConnectorError        = ffm("AL10152", "Ledger event connector request failed: %s")
	MsgLedgerBadAccountData        = ffm("AL10153", "Ledger account '%s' data could not be parsed: %s")
	MsgLedgerAccountTooShort       = ffm("AL10154", "Ledger account data length %d is shorter than the required %d bytes")
	MsgInvalidBase58               = ffm("AL10155", "Invalid base58 address '%s'")
	MsgInvalidAddressLength        = ffm("AL10156", "Address '%s' decodes to %d bytes, expected 32")
	MsgNoViableProgramAddress      = ffm("AL10157", "Unable to find a viable program address for the supplied seeds")
	MsgSeedTooLong                 = ffm("AL10158", "Seed %d is %d bytes, longer than the maximum of 32")
	MsgLedgerSubscriptionClosed    = ffm("AL10159", "Ledger subscription closed")
	MsgWSSendTimedOut              = ffm("AL10160", "Websocket send timed out")
	MsgWSClosing                   = ffm("AL10161", "Websocket closing")
	MsgWSConnectFailed             = ffm("AL10162", "Websocket connect failed")
	MsgEnrichmentFetchFailed       = ffm("AL10170", "Enrichment fetch of '%s' failed: %s")
	MsgEnrichmentUnsupportedScheme = ffm("AL10171", "Enrichment reference '%s' uses an unsupported scheme")
	MsgEnrichmentTooLarge          = ffm("AL10172", "Enrichment document '%s' exceeds the maximum size of %s")
	MsgEnrichmentSchemaInvalid     = ffm("AL10173", "Enrichment document '%s' does not match schema: %s")
	MsgEnrichmentSchemaLoadFailed  = ffm("AL10174", "Enrichment schema could not be loaded")
	MsgEnrichmentQueueStopped      = ffm("AL10175", "Enrichment queue is stopped")
	MsgInvalidCAFile               = ffm("AL10180", "Invalid CA certificates file")
	MsgTLSConfigFailed             = ffm("AL10181", "Failed to initialize TLS configuration")
	MsgInvalidQueryParam           = ffm("AL10182", "Invalid value '%s' for query parameter '%s'", http.StatusBadRequest)
	MsgInvalidPathParam            = ffm("AL10183", "Invalid value '%s' for path parameter '%s'", http.StatusBadRequest)
	MsgInvalidOutputOption         = ffm("AL10184", "Invalid output option '%s'")

	MsgSuccessResponse             = ffm("AL10190", "Success")
	MsgRouteDescGetStatus          = ffm("AL10191", "Gets record counts by kind and status, and the progress of reconciliation")
	MsgRouteDescGetRecords         = ffm("AL10192", "Lists records in insertion order. Orphaned records are excluded unless requested.")
	MsgRouteDescGetScopeVerify     = ffm("AL10193", "Re-walks the hash chain of a scope, returning a conflict if it is broken")
	MsgParamDescKind               = ffm("AL10194", "Record kind: agent, feedback, response or revocation")
	MsgParamDescStatus             = ffm("AL10195", "Record status: pending, finalized or orphaned")
	MsgParamDescScope              = ffm("AL10196", "Scope as kind:key, such as feedback:<asset>")
	MsgParamDescIncludeOrphaned    = ffm("AL10197", "Include orphaned records")
	MsgParamDescSkip               = ffm("AL10198", "Number of records to skip")
	MsgParamDescLimit              = ffm("AL10199", "Maximum number of records to return")
	MsgParamDescScopeKind          = ffm("AL10200", "Scope kind: agents, feedback, response or revocation")
	MsgParamDescScopeKey           = ffm("AL10201", "Scope key, the program ID for agents or the agent asset otherwise")
)
