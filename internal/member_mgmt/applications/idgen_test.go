package applications

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_GenerateCardNumber_Deterministic(t *testing.T) {
	a := GenerateCardNumber("Computer Science", "A-123", "Class 11")
	b := GenerateCardNumber("Computer Science", "A-123", "Class 11")
	assert.Equal(t, a, b)
}

func Test_GenerateCardNumber_Table(t *testing.T) {
	tests := []struct {
		name         string
		field        string
		rollNo       string
		studentClass string
		want         string
	}{
		{
			name:         "known_field_and_class_with_prefixed_roll",
			field:        "Computer Science",
			rollNo:       "A-123",
			studentClass: "Class 11",
			want:         "CS-123-11",
		},
		{
			name:         "unknown_field_and_class_fall_back_to_XX",
			field:        "",
			rollNo:       "045",
			studentClass: "Unknown Track",
			want:         "XX-045-XX",
		},
		{
			name:         "prefix_without_hyphen_is_stripped",
			field:        "Pre-Medical",
			rollNo:       "B456",
			studentClass: "Class 12",
			want:         "PM-456-12",
		},
		{
			name:         "no_prefix_keeps_roll_as_is",
			field:        "Commerce",
			rollNo:       "789",
			studentClass: "BSc Part 2",
			want:         "CO-789-BII",
		},
		{
			name:         "only_first_letter_prefix_is_stripped",
			field:        "Humanities",
			rollNo:       "C-C-12",
			studentClass: "ADS I",
			want:         "HU-C-12-AI",
		},
		{
			name:         "ads_two",
			field:        "Pre-Engineering",
			rollNo:       "x-9",
			studentClass: "ADS II",
			want:         "PE-9-AII",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateCardNumber(tt.field, tt.rollNo, tt.studentClass))
		})
	}
}

func Test_CanonicalCardNumber(t *testing.T) {
	assert.Equal(t, "CS-123-11", CanonicalCardNumber("  cs-123-11 "))
	assert.Equal(t, "XX-045-XX", CanonicalCardNumber("xx-045-xx"))
}

func Test_GenerateStudentID_Shape(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := GenerateStudentID()
		assert.True(t, strings.HasPrefix(id, "LIB-"), "id %q should have LIB- prefix", id)
		assert.Len(t, id, len("LIB-")+6)
		for _, r := range id[len("LIB-"):] {
			assert.True(t, r >= '0' && r <= '9', "id %q should end with 6 digits", id)
		}
	}
}

func Test_ValidityWindow(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 9, 26, 535897, time.UTC)
	issue, validThrough := ValidityWindow(now)

	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), issue)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), validThrough)
}
