package cmd

import "testing"

func TestKeys_Run(t *testing.T) {
	const source = `{% name %} {% if stats.hp %}{% stats.hp!int %}{% endif %} {% name %}
{% foreach drops %}{% $item %}{% endforeach %}`

	tests := []struct {
		format string
		want   string
	}{
		{"lines", "name\nstats.hp\ndrops\n"},
		{"json", "[\n  \"name\",\n  \"stats.hp\",\n  \"drops\"\n]\n"},
		{"yaml", "- name\n- stats.hp\n- drops\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := run(t, &Keys{Format: tt.format, Template: "-"}, source)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Run() = %q, want %q", got, tt.want)
			}
		})
	}
}
