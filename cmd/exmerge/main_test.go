package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ukaji3/exmerge-go/pkg/exmerge"
	"github.com/xuri/excelize/v2"
)

func writeBook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save %s: %v", name, err)
	}
	return path
}

func TestParseKeyColumn(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"auto", exmerge.KeyAuto, false},
		{"", exmerge.KeyAuto, false},
		{"none", exmerge.KeyNone, false},
		{"3", 3, false},
		{"B", 2, false},
		{"aa", 27, false},
		{"-2", 0, true},
		{"1A", 0, true},
	}
	for _, tt := range tests {
		got, err := parseKeyColumn(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseKeyColumn(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.expected {
			t.Errorf("parseKeyColumn(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestSetupLoggingJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := setupLogging(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	logger.Debug("hello", "sheet", "Data")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected a JSON record, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "hello" || record["sheet"] != "Data" {
		t.Errorf("Unexpected record: %v", record)
	}

	if _, err := setupLogging(&buf, "info", "xml"); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	ours := writeBook(t, dir, "ours.xlsx", [][]interface{}{{"id", "name"}, {1, "apple"}, {2, "banana"}})
	theirs := writeBook(t, dir, "theirs.xlsx", [][]interface{}{{"id", "name"}, {1, "apple"}, {2, "cherry"}})

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"diff", "--log-level", "error", ours, theirs})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	var result struct {
		Sheets []struct {
			Name  string `json:"name"`
			Cells []struct {
				Status string `json:"status"`
			} `json:"cells"`
		} `json:"sheets"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if len(result.Sheets) != 1 || result.Sheets[0].Name != "Sheet1" {
		t.Fatalf("Unexpected sheets: %+v", result.Sheets)
	}
	var conflicts int
	for _, c := range result.Sheets[0].Cells {
		if c.Status == "conflict" {
			conflicts++
		}
	}
	if conflicts != 1 {
		t.Errorf("Expected 1 conflict, got %d in %s", conflicts, out.String())
	}
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	base := writeBook(t, dir, "base.xlsx", [][]interface{}{{"id", "name"}, {1, "apple"}, {2, "banana"}})
	ours := writeBook(t, dir, "ours.xlsx", [][]interface{}{{"id", "name"}, {1, "APPLE"}, {2, "banana"}})
	theirs := writeBook(t, dir, "theirs.xlsx", [][]interface{}{{"id", "name"}, {1, "Apple!"}, {2, "cherry"}, {3, "date"}})
	out := filepath.Join(dir, "merged.xlsx")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"merge", "--log-level", "error", "--take-theirs-rows", "--conflicts", "theirs", "-o", out, base, ours, theirs})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("Failed to open merged file: %v", err)
	}
	defer f.Close()
	expected := map[string]string{"B2": "Apple!", "B3": "cherry", "A4": "3", "B4": "date"}
	for cell, want := range expected {
		if got, _ := f.GetCellValue("Sheet1", cell); got != want {
			t.Errorf("%s: expected %q, got %q", cell, want, got)
		}
	}
}

func TestMergeRejectsBaseChoiceWithoutBase(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"merge", "--log-level", "error", "--conflicts", "base", "-o", "x.xlsx", "a.xlsx", "b.xlsx"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "base workbook") {
		t.Errorf("Expected a missing base error, got %v", err)
	}
}
