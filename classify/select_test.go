package classify

import (
	"reflect"
	"testing"
)

func candidates() []Candidate {
	return []Candidate{
		{Ref: "field", Gravity: Field},
		{Ref: "std", Gravity: Field, Standard: true},
		{Ref: "gamma", Gravity: Gamma},
		{Ref: "beta", Gravity: Beta},
		{Ref: "young", Gravity: Field, Young: true},
		{Ref: "blue", Gravity: Field, Blue: true},
		{Ref: "dusty-gamma", Gravity: Gamma, Dusty: true},
		{Ref: "binary", Gravity: Field, Binary: true},
		{Ref: "pec", Gravity: Field, Peculiar: true},
		{Ref: "excluded", Gravity: Field, Excluded: true},
	}
}

func TestSelect(t *testing.T) {
	type outcome struct {
		role Role
		in   bool
	}

	tests := []struct {
		request Gravity
		want    map[string]outcome
	}{
		{
			request: Young,
			want: map[string]outcome{
				"gamma": {RoleYoung, true},
				"beta":  {RoleYoung, true},
				"young": {RoleYoung, true},
			},
		},
		{
			request: Gamma,
			want:    map[string]outcome{"gamma": {RoleYoung, true}},
		},
		{
			request: Beta,
			want:    map[string]outcome{"beta": {RoleYoung, true}},
		},
		{
			request: Field,
			want: map[string]outcome{
				"field":  {RoleField, true},
				"std":    {RoleStandard, true},
				"blue":   {RoleSpecial, false},
				"binary": {RoleSpecial, false},
				"pec":    {RoleSpecial, false},
			},
		},
		{
			request: Unspecified,
			want: map[string]outcome{
				"field":  {RoleField, true},
				"std":    {RoleStandard, true},
				"gamma":  {RoleField, true},
				"beta":   {RoleField, true},
				"young":  {RoleYoung, true},
				"binary": {RoleField, true},
				"pec":    {RoleField, true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.request.String(), func(t *testing.T) {
			cands := candidates()
			decisions := Select(tt.request, cands)
			if len(decisions) != len(cands) {
				t.Fatalf("got %d decisions for %d candidates", len(decisions), len(cands))
			}

			for i, d := range decisions {
				if d.Ref != cands[i].Ref {
					t.Fatalf("decision %d is for %q, want %q", i, d.Ref, cands[i].Ref)
				}
				want, ok := tt.want[d.Ref]
				if !ok {
					want = outcome{RoleExclude, false}
				}
				if d.Role != want.role || d.InTemplate != want.in {
					t.Errorf("%s: got %v/%v, want %v/%v", d.Ref, d.Role, d.InTemplate, want.role, want.in)
				}
			}
		})
	}
}

func TestSelectNeverIncludesExcluded(t *testing.T) {
	c := []Candidate{{Ref: "x", Gravity: Gamma, Young: true, Standard: true, Excluded: true}}
	for _, req := range []Gravity{Unspecified, Field, Beta, Gamma, Young} {
		d := Select(req, c)[0]
		if d.InTemplate || d.Role != RoleExclude {
			t.Errorf("%v: excluded candidate got %v/%v", req, d.Role, d.InTemplate)
		}
	}
}

func TestMembers(t *testing.T) {
	got := Members(Select(Field, candidates()))
	want := []string{"field", "std"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Members = %v, want %v", got, want)
	}
}
