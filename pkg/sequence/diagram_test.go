package sequence

import "testing"

func TestActorOrder(t *testing.T) {
	d := &Diagram{
		Actors: []Actor{{ID: "B", Name: "Bob"}},
		Events: []Event{
			AddActor{ID: "A"},
			AddActor{ID: "B", Link: "https://example.com/bob"},
			Message{From: "A", To: "B", Text: "hi"},
			AddActor{ID: "C", Name: "Carol"},
			AddActor{ID: "A", Name: "Alice"},
		},
	}

	got := d.ActorOrder()
	want := []Actor{
		{ID: "B", Name: "Bob", Link: "https://example.com/bob"},
		{ID: "A", Name: "Alice"},
		{ID: "C", Name: "Carol"},
	}
	if len(got) != len(want) {
		t.Fatalf("ActorOrder() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ActorOrder()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestActorLabel(t *testing.T) {
	if got := (Actor{ID: "a"}).Label(); got != "a" {
		t.Errorf("Label() = %q, want %q", got, "a")
	}
	if got := (Actor{ID: "a", Name: "Alice"}).Label(); got != "Alice" {
		t.Errorf("Label() = %q, want %q", got, "Alice")
	}
}

func TestArrow(t *testing.T) {
	tests := []struct {
		arrow  Arrow
		valid  bool
		dotted bool
	}{
		{ArrowSolid, true, false},
		{ArrowDotted, true, true},
		{ArrowSolidOpen, true, false},
		{ArrowDottedOpen, true, true},
		{ArrowSolidCross, true, false},
		{ArrowDottedCross, true, true},
		{Arrow("wavy"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.arrow), func(t *testing.T) {
			if got := tt.arrow.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.arrow.Dotted(); got != tt.dotted {
				t.Errorf("Dotted() = %v, want %v", got, tt.dotted)
			}
		})
	}
}

func TestDividerSection(t *testing.T) {
	if DividerElse.Section() != SectionAlt {
		t.Errorf("else.Section() = %q, want alt", DividerElse.Section())
	}
	if DividerAnd.Section() != SectionPar {
		t.Errorf("and.Section() = %q, want par", DividerAnd.Section())
	}
	if DividerKind("or").Section() != "" {
		t.Error("unknown divider should map to no section")
	}
}

func TestBuilder(t *testing.T) {
	d := New().
		Actor("A").
		Actor("B").
		Start(SectionLoop, "retry").
		Message("A", "B", "x").
		End(SectionLoop).
		Diagram()

	kinds := []string{"add_actor", "add_actor", "section_start", "message", "section_end"}
	if len(d.Events) != len(kinds) {
		t.Fatalf("events = %d, want %d", len(d.Events), len(kinds))
	}
	for i, k := range kinds {
		if d.Events[i].Type() != k {
			t.Errorf("event %d kind = %q, want %q", i, d.Events[i].Type(), k)
		}
	}
}

func TestEventType(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{AddActor{ID: "A"}, "add_actor"},
		{Message{From: "A", To: "B"}, "message"},
		{ActivateStart{Actor: "A"}, "activate_start"},
		{ActivateEnd{Actor: "A"}, "activate_end"},
		{Note{Actors: []string{"A"}, Placement: PlacementOver}, "note"},
		{SectionStart{Kind: SectionAlt, Label: "ok"}, "section_start"},
		{SectionDivider{Kind: DividerElse, Label: "fail"}, "section_divider"},
		{SectionEnd{Kind: SectionAlt}, "section_end"},
		{SetTitle{Text: "T"}, "set_title"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ev.Type(); got != tt.want {
				t.Errorf("Type() = %q, want %q", got, tt.want)
			}
		})
	}

	// Section variants keep their Kind field alongside the Type method.
	if k := (SectionEnd{Kind: SectionPar}).Kind; k != SectionPar {
		t.Errorf("SectionEnd.Kind = %q, want %q", k, SectionPar)
	}
	if s := (SectionDivider{Kind: DividerAnd}).Kind.Section(); s != SectionPar {
		t.Errorf("DividerAnd.Section() = %q, want %q", s, SectionPar)
	}
}
