package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ivanoskov/civic_bot/internal/model"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line    string
		want    model.Inbound
		wantErr bool
	}{
		{"Hi", model.TextEvent("Hi"), false},
		{"/image /uploads/a.jpg", model.ImageEvent("/uploads/a.jpg"), false},
		{"/image", model.Inbound{}, true},
		{"/loc 22.3 73.18", model.LocationEvent(22.3, 73.18), false},
		{"/loc 22.3", model.Inbound{}, true},
		{"/loc north south", model.Inbound{}, true},
	}
	for _, tt := range tests {
		got, err := parseLine(tt.line)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseLine(%q) err = %v", tt.line, err)
		}
		if got != tt.want {
			t.Fatalf("parseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	render(&buf, model.Outbound{
		Kind: model.OutboundList,
		Body: "Main menu",
		Sections: []model.ListSection{{Title: "Services", Rows: []model.ListRow{
			{ID: "1", Title: "Roads", Description: "Infrastructure"},
			{ID: "4", Title: "Property Tax"},
		}}},
		Footer: "Type Hi to restart",
	})

	got := buf.String()
	for _, want := range []string{"Main menu\n", "  Services\n", "    [1] Roads (Infrastructure)\n", "    [4] Property Tax\n", "Type Hi to restart\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
