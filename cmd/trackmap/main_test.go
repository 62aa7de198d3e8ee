package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const crossingCSV = "vessel_name,timestamp,longitude,latitude,vessel_type,speed_knots,heading_degrees\n" +
	"Ever Given,2024-01-01T00:00:00Z,179.5,10,Container,14,270\n" +
	"Ever Given,2024-01-01T06:00:00Z,-179.5,10.5,Container,14,270\n"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func shipDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ships.csv"), []byte(crossingCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestFrameCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seam.geojson")
	doc := `{"type":"FeatureCollection","features":[
	 {"type":"Feature","geometry":{"type":"LineString","coordinates":[[170,10],[-170,12]]},"properties":{"vessel_name":"Seam"}},
	 {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{}}
	]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "frame", path)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	var res frameOutput
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %s: %v", out, err)
	}
	if !res.Frame.Crossing || res.Frame.Center.Lon != 180 {
		t.Errorf("frame = %+v", res.Frame)
	}
	if res.Static.ProjectionOriginLon != 180 {
		t.Errorf("static view = %+v", res.Static)
	}
	if res.Skipped.Count != 1 {
		t.Errorf("skipped = %+v", res.Skipped)
	}
}

func TestFrameCommand_MissingFile(t *testing.T) {
	if _, _, err := run(t, "frame", filepath.Join(t.TempDir(), "nope.geojson")); err == nil {
		t.Error("expected error")
	}
}

func TestRenderCommand(t *testing.T) {
	out := t.TempDir()
	stdout, _, err := run(t, "render", "--ships", shipDir(t), "--out", out, "--format", "svg", "--storm", "milton", "--basin", "indian")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	html, err := os.ReadFile(filepath.Join(out, "track_map.html"))
	if err != nil || !strings.Contains(string(html), "leaflet") {
		t.Errorf("interactive map missing: %v", err)
	}
	svg, err := os.ReadFile(filepath.Join(out, "track_map.svg"))
	if err != nil || !strings.Contains(string(svg), "<svg") {
		t.Errorf("static map missing: %v", err)
	}
	if !strings.Contains(stdout, "2 tracks") {
		t.Errorf("summary = %q", stdout)
	}
}

func TestRenderCommand_NothingToRender(t *testing.T) {
	if _, _, err := run(t, "render", "--no-ships"); err == nil {
		t.Error("expected error")
	}
}

func TestStormsShow_Sample(t *testing.T) {
	out, _, err := run(t, "storms", "show", "milton", "--year", "2024", "--basin", "indian")
	if err != nil {
		t.Fatalf("storms show: %v", err)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal([]byte(out), &fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 16 {
		t.Errorf("got %s with %d features", fc.Type, len(fc.Features))
	}
}

func TestExportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ships.geojson")
	if _, _, err := run(t, "export", shipDir(t), "-o", path); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Ever Given") {
		t.Errorf("export missing vessel: %s", data)
	}
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.csv"), []byte("sep=,\n\n"+crossingCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := run(t, "clean-csv", dir)
	if err != nil {
		t.Fatalf("clean-csv: %v", err)
	}
	if !strings.Contains(out, "a.csv: 2 lines removed") {
		t.Errorf("output = %q", out)
	}
}
