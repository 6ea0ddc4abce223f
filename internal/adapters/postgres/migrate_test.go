package postgres

import "testing"

func TestMigrations_Ordered(t *testing.T) {
	all, err := Migrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(all))
	}
	if all[0].Version != "001_travels" || all[1].Version != "002_media" {
		t.Errorf("unexpected order: %s, %s", all[0].Version, all[1].Version)
	}
	for _, m := range all {
		if m.Up == "" || m.Down == "" {
			t.Errorf("%s must have both up and down scripts", m.Version)
		}
	}
}
