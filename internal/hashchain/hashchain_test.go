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

package hashchain

import (
	"context"
	"fmt"
	"testing"

	"github.com/kaleido-io/agentledger/mocks/databasemocks"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testScope = core.ScopeRef{Kind: core.ScopeKindFeedback, Key: "Agent111"}

func newTestTracker(t *testing.T) (*tracker, *databasemocks.Plugin) {
	mdi := &databasemocks.Plugin{}
	tr, err := NewTracker(context.Background(), mdi)
	assert.NoError(t, err)
	return tr.(*tracker), mdi
}

// buildChain returns n correctly chained records, one per slot starting at slot 10
func buildChain(n int) []*core.Record {
	records := make([]*core.Record, n)
	prev := &core.ZeroDigest
	for i := 0; i < n; i++ {
		r := &core.Record{
			Sequence:         int64(100 + i),
			Kind:             core.RecordKindFeedback,
			NaturalKey:       fmt.Sprintf("Agent111/Client1/%d", i),
			Scope:            testScope,
			Status:           core.RecordStatusPending,
			ScopedSequenceID: core.Int64Ptr(int64(i + 1)),
			ContentHash:      core.NewRandB32(),
			OrderingKey:      core.OrderingKey{Slot: uint64(10 + i), Signature: fmt.Sprintf("sig%d", i)},
		}
		r.RunningDigest = Fold(prev, r.ContentHash)
		r.ChainCount = core.Int64Ptr(int64(i + 1))
		prev = r.RunningDigest
		records[i] = r
	}
	return records
}

func TestFoldFromSeed(t *testing.T) {
	content := core.NewRandB32()
	assert.Equal(t, core.Keccak256(core.ZeroDigest[:], content[:]), Fold(nil, content))
	assert.Equal(t, Fold(&core.ZeroDigest, content), Fold(nil, content))
	assert.NotEqual(t, Fold(content, content), Fold(nil, content))
}

func TestVerifyIntactChain(t *testing.T) {
	records := buildChain(5)
	assert.Equal(t, -1, Verify(records))
	assert.Equal(t, -1, Verify(records[2:]))
	assert.Equal(t, -1, Verify(nil))
}

func TestVerifyTamperedContent(t *testing.T) {
	records := buildChain(5)
	records[3].ContentHash = core.NewRandB32()
	assert.Equal(t, 3, Verify(records))
}

func TestVerifyGapInPositions(t *testing.T) {
	records := buildChain(5)
	assert.Equal(t, 2, Verify([]*core.Record{records[0], records[1], records[3]}))
}

func TestVerifyUnchainedRecord(t *testing.T) {
	records := buildChain(2)
	records[1].RunningDigest = nil
	assert.Equal(t, 1, Verify(records))
}

func TestVerifyFirstRecordAgainstSeed(t *testing.T) {
	records := buildChain(2)
	records[0].RunningDigest = core.NewRandB32()
	assert.Equal(t, 0, Verify(records))
}

func TestChainDetectsAnyTamperedLeaf(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("the first tampered leaf is reported", prop.ForAll(
		func(n, tamper int) bool {
			records := buildChain(n)
			if Verify(records) != -1 {
				return false
			}
			idx := tamper % n
			records[idx].ContentHash = core.NewRandB32()
			return Verify(records) == idx
		},
		gen.IntRange(1, 40),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestNewTrackerMissingDatabase(t *testing.T) {
	_, err := NewTracker(context.Background(), nil)
	assert.Regexp(t, "AL10114", err)
}

func TestAppendFirstRecord(t *testing.T) {
	tr, mdi := newTestTracker(t)
	r := buildChain(1)[0]
	r.RunningDigest = nil
	r.ChainCount = nil
	expected := Fold(nil, r.ContentHash)

	mdi.On("GetScopeCounter", mock.Anything, testScope).Return(nil, nil)
	mdi.On("SetRecordChain", mock.Anything, int64(100), int64(1), expected, int64(1)).Return(nil)
	mdi.On("UpdateScopeChain", mock.Anything, testScope, int64(1), expected).Return(nil)

	err := tr.Append(context.Background(), r)
	assert.NoError(t, err)
	assert.Equal(t, expected, r.RunningDigest)
	assert.Equal(t, int64(1), *r.ChainCount)
	mdi.AssertExpectations(t)
}

func TestAppendOntoTip(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(3)
	r := records[2]
	expected := r.RunningDigest
	r.RunningDigest = nil
	r.ChainCount = nil

	mdi.On("GetScopeCounter", mock.Anything, testScope).Return(&core.ScopeCounter{
		Scope:        testScope,
		LastSequence: 5,
		ChainCount:   2,
		ChainDigest:  records[1].RunningDigest,
	}, nil)
	mdi.On("SetRecordChain", mock.Anything, int64(102), int64(3), expected, int64(3)).Return(nil)
	mdi.On("UpdateScopeChain", mock.Anything, testScope, int64(3), expected).Return(nil)

	err := tr.Append(context.Background(), r)
	assert.NoError(t, err)
	assert.Equal(t, -1, Verify(records))
	mdi.AssertExpectations(t)
}

func TestAppendCounterFail(t *testing.T) {
	tr, mdi := newTestTracker(t)
	mdi.On("GetScopeCounter", mock.Anything, testScope).Return(nil, fmt.Errorf("pop"))
	err := tr.Append(context.Background(), buildChain(1)[0])
	assert.Regexp(t, "pop", err)
}

func TestAppendSetChainFail(t *testing.T) {
	tr, mdi := newTestTracker(t)
	mdi.On("GetScopeCounter", mock.Anything, testScope).Return(nil, nil)
	mdi.On("SetRecordChain", mock.Anything, int64(100), int64(1), mock.Anything, int64(1)).Return(fmt.Errorf("pop"))
	err := tr.Append(context.Background(), buildChain(1)[0])
	assert.Regexp(t, "pop", err)
}

func TestAppendUpdateTipFail(t *testing.T) {
	tr, mdi := newTestTracker(t)
	mdi.On("GetScopeCounter", mock.Anything, testScope).Return(nil, nil)
	mdi.On("SetRecordChain", mock.Anything, int64(100), int64(1), mock.Anything, int64(1)).Return(nil)
	mdi.On("UpdateScopeChain", mock.Anything, testScope, int64(1), mock.Anything).Return(fmt.Errorf("pop"))
	err := tr.Append(context.Background(), buildChain(1)[0])
	assert.Regexp(t, "pop", err)
}

func TestRechainLateArrivalRefoldsSuffix(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(4)

	// A late record lands at slot 11, between the first two
	late := &core.Record{
		Sequence:         200,
		Kind:             core.RecordKindFeedback,
		NaturalKey:       "Agent111/Client2/0",
		Scope:            testScope,
		Status:           core.RecordStatusPending,
		ScopedSequenceID: core.Int64Ptr(5),
		ContentHash:      core.NewRandB32(),
		OrderingKey:      core.OrderingKey{Slot: 11, Signature: "sig0"},
	}

	mdi.On("GetChainTail", mock.Anything, testScope, uint64(11)).Return(records[0], nil)
	mdi.On("GetSequencedRecords", mock.Anything, testScope).Return([]*core.Record{
		records[0], records[1], records[2], records[3], late,
	}, nil)
	mdi.On("SetRecordChain", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mdi.On("UpdateScopeChain", mock.Anything, testScope, int64(5), mock.Anything).Return(nil)

	err := tr.Rechain(context.Background(), testScope, 11)
	assert.NoError(t, err)

	chain := []*core.Record{records[0], late, records[1], records[2], records[3]}
	assert.Equal(t, -1, Verify(chain))
	assert.Equal(t, int64(5), *records[3].ChainCount)
	mdi.AssertNumberOfCalls(t, "SetRecordChain", 4)
	mdi.AssertCalled(t, "UpdateScopeChain", mock.Anything, testScope, int64(5), records[3].RunningDigest)
}

func TestRechainUnchangedWritesNothing(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(3)
	records[1].Status = core.RecordStatusFinalized

	mdi.On("GetSequencedRecords", mock.Anything, testScope).Return(records, nil)
	mdi.On("UpdateScopeChain", mock.Anything, testScope, int64(3), records[2].RunningDigest).Return(nil)

	err := tr.Rechain(context.Background(), testScope, 0)
	assert.NoError(t, err)
	mdi.AssertNotCalled(t, "SetRecordChain", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mdi.AssertExpectations(t)
}

func TestRechainAfterOrphaningLastRecord(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(3)

	mdi.On("GetChainTail", mock.Anything, testScope, uint64(12)).Return(records[1], nil)
	mdi.On("GetSequencedRecords", mock.Anything, testScope).Return(records[0:2], nil)
	mdi.On("UpdateScopeChain", mock.Anything, testScope, int64(2), records[1].RunningDigest).Return(nil)

	err := tr.Rechain(context.Background(), testScope, 12)
	assert.NoError(t, err)
	mdi.AssertExpectations(t)
}

func TestRechainRefusesFinalizedChange(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(3)
	records[2].Status = core.RecordStatusFinalized

	// Orphaning the middle record would move the finalized one
	mdi.On("GetChainTail", mock.Anything, testScope, uint64(11)).Return(records[0], nil)
	mdi.On("GetSequencedRecords", mock.Anything, testScope).Return([]*core.Record{records[0], records[2]}, nil)

	err := tr.Rechain(context.Background(), testScope, 11)
	assert.Regexp(t, "AL10143", err)
	mdi.AssertNotCalled(t, "SetRecordChain", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mdi.AssertNotCalled(t, "UpdateScopeChain", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRechainChainsFinalizedRecordWithoutDigest(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(2)
	expected := records[1].RunningDigest
	records[1].Status = core.RecordStatusFinalized
	records[1].RunningDigest = nil
	records[1].ChainCount = nil

	mdi.On("GetSequencedRecords", mock.Anything, testScope).Return(records, nil)
	mdi.On("SetRecordChain", mock.Anything, int64(101), int64(2), expected, int64(2)).Return(nil)
	mdi.On("UpdateScopeChain", mock.Anything, testScope, int64(2), expected).Return(nil)

	err := tr.Rechain(context.Background(), testScope, 0)
	assert.NoError(t, err)
	mdi.AssertExpectations(t)
}

func TestRechainTailFail(t *testing.T) {
	tr, mdi := newTestTracker(t)
	mdi.On("GetChainTail", mock.Anything, testScope, uint64(11)).Return(nil, fmt.Errorf("pop"))
	err := tr.Rechain(context.Background(), testScope, 11)
	assert.Regexp(t, "pop", err)
}

func TestRechainQueryFail(t *testing.T) {
	tr, mdi := newTestTracker(t)
	mdi.On("GetSequencedRecords", mock.Anything, testScope).Return(nil, fmt.Errorf("pop"))
	err := tr.Rechain(context.Background(), testScope, 0)
	assert.Regexp(t, "pop", err)
}

func TestRechainSetChainFail(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(2)
	records[1].RunningDigest = nil
	records[1].ChainCount = nil
	mdi.On("GetSequencedRecords", mock.Anything, testScope).Return(records, nil)
	mdi.On("SetRecordChain", mock.Anything, int64(101), int64(2), mock.Anything, int64(2)).Return(fmt.Errorf("pop"))
	err := tr.Rechain(context.Background(), testScope, 0)
	assert.Regexp(t, "pop", err)
}

func TestVerifyScopeOk(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(3)
	mdi.On("GetChainedRecords", mock.Anything, testScope, uint64(0)).Return(records, nil)
	mdi.On("GetScopeCounter", mock.Anything, testScope).Return(&core.ScopeCounter{
		ChainCount:  3,
		ChainDigest: records[2].RunningDigest,
	}, nil)
	assert.NoError(t, tr.VerifyScope(context.Background(), testScope))
}

func TestVerifyScopeEmpty(t *testing.T) {
	tr, mdi := newTestTracker(t)
	mdi.On("GetChainedRecords", mock.Anything, testScope, uint64(0)).Return([]*core.Record{}, nil)
	mdi.On("GetScopeCounter", mock.Anything, testScope).Return(nil, nil)
	assert.NoError(t, tr.VerifyScope(context.Background(), testScope))
}

func TestVerifyScopeBrokenLink(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(3)
	records[1].ContentHash = core.NewRandB32()
	mdi.On("GetChainedRecords", mock.Anything, testScope, uint64(0)).Return(records, nil)
	err := tr.VerifyScope(context.Background(), testScope)
	assert.Regexp(t, "AL10144.*position 1", err)
}

func TestVerifyScopeMissingHead(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(3)
	mdi.On("GetChainedRecords", mock.Anything, testScope, uint64(0)).Return(records[1:], nil)
	err := tr.VerifyScope(context.Background(), testScope)
	assert.Regexp(t, "AL10144.*position 0", err)
}

func TestVerifyScopeStaleTip(t *testing.T) {
	tr, mdi := newTestTracker(t)
	records := buildChain(3)
	mdi.On("GetChainedRecords", mock.Anything, testScope, uint64(0)).Return(records, nil)
	mdi.On("GetScopeCounter", mock.Anything, testScope).Return(&core.ScopeCounter{
		ChainCount:  2,
		ChainDigest: records[1].RunningDigest,
	}, nil)
	err := tr.VerifyScope(context.Background(), testScope)
	assert.Regexp(t, "AL10144.*position 3", err)
}

func TestVerifyScopeQueryFail(t *testing.T) {
	tr, mdi := newTestTracker(t)
	mdi.On("GetChainedRecords", mock.Anything, testScope, uint64(0)).Return(nil, fmt.Errorf("pop"))
	err := tr.VerifyScope(context.Background(), testScope)
	assert.Regexp(t, "pop", err)
}

func TestVerifyScopeCounterFail(t *testing.T) {
	tr, mdi := newTestTracker(t)
	mdi.On("GetChainedRecords", mock.Anything, testScope, uint64(0)).Return(buildChain(1), nil)
	mdi.On("GetScopeCounter", mock.Anything, testScope).Return(nil, fmt.Errorf("pop"))
	err := tr.VerifyScope(context.Background(), testScope)
	assert.Regexp(t, "pop", err)
}
