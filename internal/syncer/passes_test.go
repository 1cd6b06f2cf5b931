package syncer

import "testing"

func TestGoFileName(t *testing.T) {
	tests := []struct {
		declared string
		want     string
	}{
		{"weatherForecast", "weather_forecast.go"},
		{"kbSearchTool", "kb_search_tool.go"},
		{"router", "router.go"},
		// A leading-digit identifier folds to a _-escaped declared name; the
		// file name keeps the bare digit form so the toolchain still sees it.
		{"_7dayOutlook", "7day_outlook.go"},
	}
	for _, tt := range tests {
		if got := goFileName(tt.declared); got != tt.want {
			t.Errorf("goFileName(%q) = %q, want %q", tt.declared, got, tt.want)
		}
	}
}
