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

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/spf13/cobra"
)

var pageSize = 50

var rootCmd = &cobra.Command{
	Use:   "auditrecords [flags] host scope",
	Short: "Agent ledger scope auditor",
	Long:  "Tool for auditing the scoped sequence IDs and hash chain of one scope, such as feedback:<asset>",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(resty.New().SetBaseURL(args[0]), args[1])
	},
}

func get(client *resty.Client, api string, query map[string]string, result interface{}) error {
	res, err := client.R().SetQueryParams(query).SetResult(result).Get(api)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("%s returned %d: %s", api, res.StatusCode(), res.String())
	}
	return nil
}

func run(client *resty.Client, scope string) error {
	kind, key, ok := strings.Cut(scope, ":")
	if !ok || kind == "" || key == "" {
		return fmt.Errorf("invalid scope '%s'", scope)
	}

	fmt.Printf("Checking committed records of scope %s for unique scoped sequence IDs.\n\n", scope)
	fmt.Printf("%-10s %-10s %s\n", "Row", "Scoped ID", "Natural key")

	seen := map[int64]string{}
	var ids []int64
	skip := 0
	for {
		var records []*core.Record
		query := map[string]string{
			"scope": scope,
			"skip":  strconv.Itoa(skip),
			"limit": strconv.Itoa(pageSize),
		}
		if err := get(client, "/api/v1/records", query, &records); err != nil {
			return err
		}
		for _, r := range records {
			if r.ScopedSequenceID == nil {
				fmt.Printf("%-10d %-10s %s\n", r.Sequence, "-", r.NaturalKey)
				continue
			}
			id := *r.ScopedSequenceID
			fmt.Printf("%-10d %-10d %s\n", r.Sequence, id, r.NaturalKey)
			if other, dup := seen[id]; dup {
				return fmt.Errorf("scoped sequence ID %d assigned to both %s and %s", id, other, r.NaturalKey)
			}
			seen[id] = r.NaturalKey
			ids = append(ids, id)
		}
		if len(records) < pageSize {
			break
		}
		skip += len(records)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	gaps := 0
	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[i-1]+1 {
			gaps++
		}
	}
	fmt.Printf("\n%d records validated, %d gaps\n", len(ids), gaps)

	var verification map[string]interface{}
	res, err := client.R().SetResult(&verification).Get(fmt.Sprintf("/api/v1/scopes/%s/%s/verify", url.PathEscape(kind), url.PathEscape(key)))
	if err != nil {
		return err
	}
	switch res.StatusCode() {
	case http.StatusOK:
		fmt.Printf("Hash chain intact\n")
		return nil
	default:
		var body map[string]interface{}
		_ = json.Unmarshal(res.Body(), &body)
		return fmt.Errorf("hash chain verification failed: %v", body["error"])
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
