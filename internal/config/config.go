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

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/spf13/viper"
)

// The following keys can be access from the root configuration.
// Plugins are resonsible for defining their own keys using the Prefix interface
var (
	Lang                             RootKey = ark("lang")
	LogLevel                         RootKey = ark("log.level")
	LogColor                         RootKey = ark("log.color")
	LogUTC                           RootKey = ark("log.utc")
	AdminEnabled                     RootKey = ark("admin.enabled")
	AdminAddress                     RootKey = ark("admin.address")
	AdminPort                        RootKey = ark("admin.port")
	AdminReadTimeout                 RootKey = ark("admin.readTimeout")
	AdminWriteTimeout                RootKey = ark("admin.writeTimeout")
	AdminDefaultLimit                RootKey = ark("admin.defaultLimit")
	CorsEnabled                      RootKey = ark("cors.enabled")
	CorsAllowedOrigins               RootKey = ark("cors.origins")
	CorsAllowedMethods               RootKey = ark("cors.methods")
	CorsAllowedHeaders               RootKey = ark("cors.headers")
	CorsMaxAge                       RootKey = ark("cors.maxAge")
	MetricsEnabled                   RootKey = ark("metrics.enabled")
	Database                         RootKey = ark("database")
	DatabaseType                     RootKey = ark("database.type")
	Ledger                           RootKey = ark("ledger")
	LedgerType                       RootKey = ark("ledger.type")
	IngestEnabled                    RootKey = ark("ingest.enabled")
	IngestPollInterval               RootKey = ark("ingest.pollInterval")
	IngestBatchSize                  RootKey = ark("ingest.batchSize")
	IngestRetryInitDelay             RootKey = ark("ingest.retry.initialDelay")
	IngestRetryMaxDelay              RootKey = ark("ingest.retry.maxDelay")
	IngestRetryFactor                RootKey = ark("ingest.retry.factor")
	IngestSubscriberEnabled          RootKey = ark("ingest.subscriber.enabled")
	SequencerParentCacheSize         RootKey = ark("sequencer.parentCache.size")
	SequencerParentCacheTTL          RootKey = ark("sequencer.parentCache.ttl")
	VerifyEnabled                    RootKey = ark("verify.enabled")
	VerifyInterval                   RootKey = ark("verify.interval")
	VerifyBatchSize                  RootKey = ark("verify.batchSize")
	VerifySafetyMarginSlots          RootKey = ark("verify.safetyMarginSlots")
	VerifyMaxRetries                 RootKey = ark("verify.maxRetries")
	VerifyRecoveryCycles             RootKey = ark("verify.recoveryCycles")
	VerifyRecoveryBatchSize          RootKey = ark("verify.recoveryBatchSize")
	VerifyRPCTimeout                 RootKey = ark("verify.rpcTimeout")
	EnrichmentEnabled                RootKey = ark("enrichment.enabled")
	EnrichmentCapacity               RootKey = ark("enrichment.capacity")
	EnrichmentWorkers                RootKey = ark("enrichment.workers")
	EnrichmentMinInterval            RootKey = ark("enrichment.minInterval")
	EnrichmentTaskTimeout            RootKey = ark("enrichment.taskTimeout")
	EnrichmentRecoveryInterval       RootKey = ark("enrichment.recoveryInterval")
	EnrichmentRecoveryBatchSize      RootKey = ark("enrichment.recoveryBatchSize")
	EnrichmentCapacityWarnInterval   RootKey = ark("enrichment.capacityWarnInterval")
	EnrichmentFetcherMaxDocumentSize RootKey = ark("enrichment.fetcher.maxDocumentSize")
	EnrichmentFetcherSchema          RootKey = ark("enrichment.fetcher.schema")
	EnrichmentFetcher                RootKey = ark("enrichment.fetcher")
)

// Prefix represents the global configuration, at a nested point in
// the config heirarchy. This allows plugins to define their own keys.
//
// Note that all values are GLOBAL so this cannot be used for per-instance
// customization. Rather for global initialization of plugins.
type Prefix interface {
	AddKnownKey(key string, defValue ...interface{})
	SubPrefix(suffix string) Prefix
	Set(key string, value interface{})
	Resolve(key string) string

	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
	GetByteSize(key string) int64
	GetStringSlice(key string) []string
	GetObject(key string) map[string]interface{}
	UnmarshalKey(ctx context.Context, key string, rawVal interface{}) error
	Get(key string) interface{}
}

// RootKey key are the known configuration keys
type RootKey string

func Reset() {
	viper.Reset()

	// Set defaults
	viper.SetDefault(string(Lang), "en")
	viper.SetDefault(string(LogLevel), "info")
	viper.SetDefault(string(LogColor), true)
	viper.SetDefault(string(LogUTC), false)
	viper.SetDefault(string(AdminEnabled), true)
	viper.SetDefault(string(AdminAddress), "127.0.0.1")
	viper.SetDefault(string(AdminPort), 5100)
	viper.SetDefault(string(AdminReadTimeout), "15s")
	viper.SetDefault(string(AdminWriteTimeout), "15s")
	viper.SetDefault(string(AdminDefaultLimit), 25)
	viper.SetDefault(string(CorsEnabled), true)
	viper.SetDefault(string(CorsAllowedOrigins), []string{"*"})
	viper.SetDefault(string(CorsAllowedMethods), []string{"GET"})
	viper.SetDefault(string(CorsAllowedHeaders), []string{"*"})
	viper.SetDefault(string(CorsMaxAge), 600)
	viper.SetDefault(string(MetricsEnabled), true)
	viper.SetDefault(string(IngestEnabled), true)
	viper.SetDefault(string(IngestPollInterval), "5s")
	viper.SetDefault(string(IngestBatchSize), 100)
	viper.SetDefault(string(IngestRetryInitDelay), "250ms")
	viper.SetDefault(string(IngestRetryMaxDelay), "30s")
	viper.SetDefault(string(IngestRetryFactor), 2.0)
	viper.SetDefault(string(IngestSubscriberEnabled), true)
	viper.SetDefault(string(SequencerParentCacheSize), 1000)
	viper.SetDefault(string(SequencerParentCacheTTL), "5m")
	viper.SetDefault(string(VerifyEnabled), true)
	viper.SetDefault(string(VerifyInterval), "60s")
	viper.SetDefault(string(VerifyBatchSize), 100)
	viper.SetDefault(string(VerifySafetyMarginSlots), 32)
	viper.SetDefault(string(VerifyMaxRetries), 5)
	viper.SetDefault(string(VerifyRecoveryCycles), 10)
	viper.SetDefault(string(VerifyRecoveryBatchSize), 50)
	viper.SetDefault(string(VerifyRPCTimeout), "10s")
	viper.SetDefault(string(EnrichmentEnabled), true)
	viper.SetDefault(string(EnrichmentCapacity), 100)
	viper.SetDefault(string(EnrichmentWorkers), 4)
	viper.SetDefault(string(EnrichmentMinInterval), "100ms")
	viper.SetDefault(string(EnrichmentTaskTimeout), "30s")
	viper.SetDefault(string(EnrichmentRecoveryInterval), "5m")
	viper.SetDefault(string(EnrichmentRecoveryBatchSize), 50)
	viper.SetDefault(string(EnrichmentCapacityWarnInterval), "30s")
	viper.SetDefault(string(EnrichmentFetcherMaxDocumentSize), "1Mb")
	viper.SetDefault(string(EnrichmentFetcherSchema), "")

	i18n.SetLang(GetString(Lang))
}

// ReadConfig initializes the config
func ReadConfig(cfgFile string) error {
	Reset()

	// Set precedence order for reading config location
	viper.SetEnvPrefix("agentledger")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")
	if cfgFile != "" {
		f, err := os.Open(cfgFile)
		if err == nil {
			defer f.Close()
			err = viper.ReadConfig(f)
		}
		return err
	}
	viper.SetConfigName("agentledger")
	viper.AddConfigPath("/etc/agentledger/")
	viper.AddConfigPath("$HOME/.agentledger")
	viper.AddConfigPath(".")
	return viper.ReadInConfig()
}

var root = &configPrefix{
	keys: map[string]bool{}, // All keys go here, including those defined in sub prefixies
}

// ark adds a root key, used to define the keys that are used within the core
func ark(k string) RootKey {
	root.AddKnownKey(k)
	return RootKey(k)
}

// configPrefix is the main config structure passed to plugins, and used for root to wrap viper
type configPrefix struct {
	prefix string
	keys   map[string]bool
}

// NewPluginConfig creates a new plugin configuration object, at the specified prefix
func NewPluginConfig(prefix string) Prefix {
	if !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}
	return &configPrefix{
		prefix: prefix,
		keys:   root.keys,
	}
}

func (c *configPrefix) prefixKey(k string) string {
	key := c.prefix + k
	if !c.keys[key] {
		panic(fmt.Sprintf("Undefined configuration key '%s'", key))
	}
	return key
}

func (c *configPrefix) SubPrefix(suffix string) Prefix {
	return &configPrefix{
		prefix: c.prefix + suffix + ".",
		keys:   root.keys,
	}
}

func (c *configPrefix) AddKnownKey(k string, defValue ...interface{}) {
	key := c.prefix + k
	if len(defValue) == 1 {
		viper.SetDefault(key, defValue[0])
	} else if len(defValue) > 0 {
		viper.SetDefault(key, defValue)
	}
	c.keys[key] = true
}

// GetKnownKeys gets the known keys
func GetKnownKeys() []string {
	var keys []string
	for k := range root.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *configPrefix) Resolve(key string) string {
	return c.prefixKey(key)
}

// GetString gets a configuration string
func GetString(key RootKey) string {
	return root.GetString(string(key))
}
func (c *configPrefix) GetString(key string) string {
	return viper.GetString(c.prefixKey(key))
}

// GetStringSlice gets a configuration string array
func GetStringSlice(key RootKey) []string {
	return root.GetStringSlice(string(key))
}
func (c *configPrefix) GetStringSlice(key string) []string {
	return viper.GetStringSlice(c.prefixKey(key))
}

// GetBool gets a configuration bool
func GetBool(key RootKey) bool {
	return root.GetBool(string(key))
}
func (c *configPrefix) GetBool(key string) bool {
	return viper.GetBool(c.prefixKey(key))
}

// GetDuration gets a configuration time duration, with strings like "5s" or a number of milliseconds
func GetDuration(key RootKey) time.Duration {
	return root.GetDuration(string(key))
}
func (c *configPrefix) GetDuration(key string) time.Duration {
	raw := viper.Get(c.prefixKey(key))
	switch v := raw.(type) {
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v) * time.Millisecond
	}
	return viper.GetDuration(c.prefixKey(key))
}

// GetByteSize gets a size in bytes, with strings like "64Kb" or "1Mb"
func GetByteSize(key RootKey) int64 {
	return root.GetByteSize(string(key))
}
func (c *configPrefix) GetByteSize(key string) int64 {
	i, _ := units.RAMInBytes(viper.GetString(c.prefixKey(key)))
	return i
}

// GetUint gets a configuration uint
func GetUint(key RootKey) uint {
	return root.GetUint(string(key))
}
func (c *configPrefix) GetUint(key string) uint {
	return viper.GetUint(c.prefixKey(key))
}

// GetInt gets a configuration int
func GetInt(key RootKey) int {
	return root.GetInt(string(key))
}
func (c *configPrefix) GetInt(key string) int {
	return viper.GetInt(c.prefixKey(key))
}

// GetInt64 gets a configuration int64
func GetInt64(key RootKey) int64 {
	return root.GetInt64(string(key))
}
func (c *configPrefix) GetInt64(key string) int64 {
	return viper.GetInt64(c.prefixKey(key))
}

// GetFloat64 gets a configuration float
func GetFloat64(key RootKey) float64 {
	return root.GetFloat64(string(key))
}
func (c *configPrefix) GetFloat64(key string) float64 {
	return viper.GetFloat64(c.prefixKey(key))
}

// GetObject gets a configuration map
func GetObject(key RootKey) map[string]interface{} {
	return root.GetObject(string(key))
}
func (c *configPrefix) GetObject(key string) map[string]interface{} {
	return viper.GetStringMap(c.prefixKey(key))
}

// Get gets a configuration in raw form
func Get(key RootKey) interface{} {
	return root.Get(string(key))
}
func (c *configPrefix) Get(key string) interface{} {
	return viper.Get(c.prefixKey(key))
}

// Set allows runtime setting of config (used in unit tests)
func Set(key RootKey, value interface{}) {
	root.Set(string(key), value)
}
func (c *configPrefix) Set(key string, value interface{}) {
	viper.Set(c.prefixKey(key), value)
}

// UnmarshalKey gets a configuration section into a struct
func UnmarshalKey(ctx context.Context, key RootKey, rawVal interface{}) error {
	return root.UnmarshalKey(ctx, string(key), rawVal)
}
func (c *configPrefix) UnmarshalKey(ctx context.Context, key string, rawVal interface{}) error {
	// Viper's unmarshal does not work with our json annotated config
	// structures, so we have to go from map to JSON, then to unmarshal
	var intermediate map[string]interface{}
	err := viper.UnmarshalKey(c.prefixKey(key), &intermediate)
	if err == nil {
		b, _ := json.Marshal(intermediate)
		err = json.Unmarshal(b, rawVal)
	}
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgConfigFailed, key)
	}
	return nil
}
