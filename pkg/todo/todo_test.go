package todo

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	desc := "2 liters"
	got := New("Buy milk", &desc)

	if got.ID == "" {
		t.Error("New() ID is empty")
	}
	if got.Completed {
		t.Error("New() Completed = true, want false")
	}
	if got.CreatedAt.Location() != time.UTC {
		t.Errorf("New() CreatedAt location = %v, want UTC", got.CreatedAt.Location())
	}
	if got.CreatedAt.Nanosecond()%1000 != 0 {
		t.Errorf("New() CreatedAt = %v, want microsecond precision", got.CreatedAt)
	}

	desc = "changed"
	if *got.Description != "2 liters" {
		t.Errorf("New() Description aliases caller string: %q", *got.Description)
	}
}

func TestTodo_Equal(t *testing.T) {
	base := New("title", StringPtr("desc"))

	tests := []struct {
		name   string
		modify func(*Todo)
		want   bool
	}{
		{"identical", func(*Todo) {}, true},
		{"same description different pointer", func(td *Todo) { td.Description = StringPtr("desc") }, true},
		{"same instant other zone", func(td *Todo) { td.CreatedAt = td.CreatedAt.In(time.FixedZone("X", 3600)) }, true},
		{"title", func(td *Todo) { td.Title = "other" }, false},
		{"completed", func(td *Todo) { td.Completed = true }, false},
		{"description nil", func(td *Todo) { td.Description = nil }, false},
		{"description value", func(td *Todo) { td.Description = StringPtr("x") }, false},
		{"created at", func(td *Todo) { td.CreatedAt = td.CreatedAt.Add(time.Microsecond) }, false},
		{"id", func(td *Todo) { td.ID = "other" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base.Clone()
			tt.modify(&other)
			if got := base.Equal(other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	if None[string]().IsSet() {
		t.Error("None().IsSet() = true")
	}
	if v, ok := Some("").Get(); !ok || v != "" {
		t.Errorf("Some(\"\").Get() = %q, %v", v, ok)
	}
	if got := None[int]().Or(7); got != 7 {
		t.Errorf("None().Or(7) = %d", got)
	}
}

func TestUpdateInput_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantTitle   bool
		wantDesc    bool
		wantDescNil bool
		wantDone    bool
	}{
		{"empty object", `{}`, false, false, false, false},
		{"title", `{"title":"x"}`, true, false, false, false},
		{"null description clears", `{"description":null}`, false, true, true, false},
		{"description value", `{"description":"d"}`, false, true, false, false},
		{"completed false is set", `{"completed":false}`, false, false, false, true},
		{"null title not provided", `{"title":null}`, false, false, false, false},
		{"null completed not provided", `{"completed":null}`, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in UpdateInput
			if err := json.Unmarshal([]byte(tt.body), &in); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if in.Title.IsSet() != tt.wantTitle {
				t.Errorf("Title.IsSet() = %v, want %v", in.Title.IsSet(), tt.wantTitle)
			}
			if in.Description.IsSet() != tt.wantDesc {
				t.Errorf("Description.IsSet() = %v, want %v", in.Description.IsSet(), tt.wantDesc)
			}
			if tt.wantDesc {
				d, _ := in.Description.Get()
				if (d == nil) != tt.wantDescNil {
					t.Errorf("Description = %v, want nil=%v", d, tt.wantDescNil)
				}
			}
			if in.Completed.IsSet() != tt.wantDone {
				t.Errorf("Completed.IsSet() = %v, want %v", in.Completed.IsSet(), tt.wantDone)
			}
		})
	}
}

func TestUpdateInput_RejectsWrongType(t *testing.T) {
	var in UpdateInput
	if err := json.Unmarshal([]byte(`{"completed":"yes"}`), &in); err == nil {
		t.Error("Unmarshal() error = nil, want type error")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("abc")
	if got, want := err.Error(), "todo with ID abc not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound() = false")
	}
}
