package tags

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/Paintersrp/loradex/internal/catalog"
	"github.com/Paintersrp/loradex/internal/state/statetest"
)

func TestTagsJSONByName(t *testing.T) {
	cmd := NewCmdTags(statetest.Library(t, statetest.Models))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--json", "--sort", "name"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("tags returned error: %v", err)
	}

	var tags []catalog.TagCount
	if err := json.Unmarshal(out.Bytes(), &tags); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	var names []string
	for _, tag := range tags {
		names = append(names, tag.Tag)
	}
	if strings.Join(names, ",") != "anime,dark,ink" {
		t.Fatalf("unexpected tags %v", names)
	}
}

func TestTagsTable(t *testing.T) {
	cmd := NewCmdTags(statetest.Library(t, statetest.Models))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("tags returned error: %v", err)
	}
	if !strings.Contains(out.String(), "anime") || !strings.Contains(out.String(), "Models") {
		t.Fatalf("unexpected table:\n%s", out.String())
	}
}

func TestSortTags(t *testing.T) {
	tags := []catalog.TagCount{{Tag: "b", Count: 1}, {Tag: "a", Count: 3}, {Tag: "c", Count: 2}}

	if err := sortTags(tags, "desc"); err != nil || tags[0].Tag != "a" || tags[2].Tag != "b" {
		t.Fatalf("unexpected desc order %v (err %v)", tags, err)
	}
	if err := sortTags(tags, "asc"); err != nil || tags[0].Tag != "b" {
		t.Fatalf("unexpected asc order %v (err %v)", tags, err)
	}
	if err := sortTags(tags, "sideways"); err == nil {
		t.Fatalf("expected invalid order to fail")
	}
}
