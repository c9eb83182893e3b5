package submission

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alf-academy/enroll/internal/enrollment"
)

func TestBuildPayload(t *testing.T) {
	f := validForm(t)

	got, err := BuildPayload(f, "11111111-2222-4333-8444-555555555555", est, "America/Chicago")
	require.NoError(t, err)

	want := &Payload{
		ID:                "11111111-2222-4333-8444-555555555555",
		FirstName:         "Amina",
		LastName:          "Yusuf",
		Email:             "amina.yusuf@example.com",
		PhoneNumber:       15550102030,
		Country:           "United States",
		CountryCode:       "us",
		City:              "Chicago",
		LearningInterest:  "Quran",
		NumberOfStudents:  2,
		PreferredTeacher:  "Female",
		PreferredFromTime: "11:30 AM",
		PreferredToTime:   "12:00 PM",
		ReferralSource:    "Friend",
		ReferralDetails:   "ALF-REFID-12345",
		StartDate:         "2026-10-20T16:30:00.000Z",
		EndDate:           "2026-10-20T17:00:00.000Z",
		EvaluationStatus:  "PENDING",
		ReferenceID:       "ALF-REFID-12345",
		Status:            "Active",
		CreatedBy:         "SYSTEM",
		LastUpdatedBy:     "SYSTEM",
		TimeZone:          "America/Chicago",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPayload_WireKeys(t *testing.T) {
	p, err := BuildPayload(validForm(t), "id-1", est, "EST")
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "ALF-REFID-12345", raw["refernceId"])
	assert.NotContains(t, raw, "referenceId")
	assert.NotContains(t, raw, "learningInterestDetails", "omitted unless Other")
	assert.Equal(t, float64(15550102030), raw["phoneNumber"])
	assert.Equal(t, float64(2), raw["numberOfStudents"])
}

func TestBuildPayload_MidnightWrap(t *testing.T) {
	f := validForm(t)
	require.NoError(t, f.Set(enrollment.FieldStartTime, "11:45 pm"))

	p, err := BuildPayload(f, "id", est, "EST")
	require.NoError(t, err)

	assert.Equal(t, "11:45 PM", p.PreferredFromTime)
	assert.Equal(t, "12:15 AM", p.PreferredToTime)
	assert.Equal(t, "2026-10-21T04:45:00.000Z", p.StartDate)
	assert.Equal(t, "2026-10-21T05:15:00.000Z", p.EndDate)
}

func TestBuildPayload_OtherDetails(t *testing.T) {
	f := validForm(t)
	require.NoError(t, f.Set(enrollment.FieldLearningInterest, "Other"))
	require.NoError(t, f.Set(enrollment.FieldLearningOther, `Tajweed <script>alert(1)</script>`))
	require.NoError(t, f.Set(enrollment.FieldReferralSource, "Other"))
	require.NoError(t, f.Set(enrollment.FieldReferralSourceOther, "Masjid newsletter & flyer"))

	p, err := BuildPayload(f, "id", est, "EST")
	require.NoError(t, err)

	assert.Equal(t, "Tajweed", p.LearningInterestDetails)
	assert.Equal(t, "Masjid newsletter & flyer", p.ReferralDetails)
	assert.Equal(t, "ALF-REFID-12345", p.ReferenceID)
}

func TestBuildPayload_DetailsIgnoredWithoutOther(t *testing.T) {
	f := validForm(t)
	require.NoError(t, f.Set(enrollment.FieldLearningOther, "stale text"))

	p, err := BuildPayload(f, "id", est, "EST")
	require.NoError(t, err)
	assert.Empty(t, p.LearningInterestDetails)
}

func TestBuildPayload_BadSchedule(t *testing.T) {
	f := validForm(t)
	require.NoError(t, f.Set(enrollment.FieldDate, "soon"))

	_, err := BuildPayload(f, "id", est, "EST")
	assert.Error(t, err)
}
