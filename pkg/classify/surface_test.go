package classify

import "testing"

func TestSurfaceClassifier_Classify(t *testing.T) {
	c := NewSurfaceClassifier()

	tests := []struct {
		name    string
		texts   []string
		ui, api bool
	}{
		{"frontend command", []string{"npm run build --prefix frontend/"}, true, false},
		{"component path", []string{"src/Component/Button.ts"}, true, false},
		{"dashboard work", []string{"", "render the Dashboard totals"}, true, false},
		{"api path", []string{"services/api/users.go"}, false, true},
		{"both", []string{"web/app.jsx", "internal/api/x.go"}, true, true},
		{"neither", []string{"go test ./pkg/...", "pkg/state/store.go"}, false, false},
		{"nothing", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui, api := c.Classify(tt.texts...)
			if ui != tt.ui || api != tt.api {
				t.Errorf("Classify(%q) = (%v, %v), want (%v, %v)", tt.texts, ui, api, tt.ui, tt.api)
			}
		})
	}
}
