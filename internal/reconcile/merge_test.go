package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	id     string
	bucket string
	team   string
}

func rowKey(r row) string { return r.id }

func rowRank(r row) int {
	switch r.bucket {
	case "unassigned":
		return 3
	case "active":
		return 2
	case "inactive":
		return 1
	}
	return 0
}

func TestMerge_UnassignedWinsAndOrderIsPreserved(t *testing.T) {
	unassigned := []row{{id: "5", bucket: "unassigned"}}
	scoped := []row{
		{id: "5", bucket: "active", team: "Alpha"},
		{id: "9", bucket: "active", team: "Beta"},
	}

	got := Merge(rowKey, rowRank, unassigned, scoped)
	assert.Equal(t, []row{
		{id: "5", bucket: "unassigned"},
		{id: "9", bucket: "active", team: "Beta"},
	}, got)
}

func TestMerge_HigherRankReplacesInPlace(t *testing.T) {
	scoped := []row{
		{id: "1", bucket: "inactive", team: "A"},
		{id: "2", bucket: "active", team: "B"},
		{id: "1", bucket: "active", team: "C"},
	}
	unassigned := []row{{id: "2", bucket: "unassigned"}}

	got := Merge(rowKey, rowRank, scoped, unassigned)
	assert.Equal(t, []row{
		{id: "1", bucket: "active", team: "C"},
		{id: "2", bucket: "unassigned"},
	}, got)
}

func TestMerge_EqualRankKeepsFirst(t *testing.T) {
	got := Merge(rowKey, rowRank,
		[]row{{id: "1", bucket: "active", team: "A"}},
		[]row{{id: "1", bucket: "active", team: "B"}},
	)
	assert.Equal(t, []row{{id: "1", bucket: "active", team: "A"}}, got)
}

func TestMerge_ExactlyOneRowPerKey(t *testing.T) {
	buckets := []string{"unassigned", "active", "inactive"}
	for _, a := range buckets {
		for _, b := range buckets {
			got := Merge(rowKey, rowRank,
				[]row{{id: "7", bucket: a}},
				[]row{{id: "7", bucket: b}},
			)
			if assert.Len(t, got, 1) {
				want := a
				if rowRank(row{bucket: b}) > rowRank(row{bucket: a}) {
					want = b
				}
				assert.Equal(t, want, got[0].bucket, "%s vs %s", a, b)
			}
		}
	}
}

func TestMerge_EmptyInputsReturnEmptySlice(t *testing.T) {
	got := Merge[row](rowKey, rowRank)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = Merge(rowKey, rowRank, nil, []row{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
