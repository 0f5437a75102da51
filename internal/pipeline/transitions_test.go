package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

func TestNormalizeEnabled(t *testing.T) {
	tests := []struct {
		name    string
		in      []types.Stage
		want    []types.Stage
		wantErr bool
	}{
		{
			name: "empty enables everything",
			in:   nil,
			want: Stages(),
		},
		{
			name: "dedupes and sorts",
			in:   []types.Stage{types.StageOffer, types.StageInReview, types.StageInterview, types.StageOffer},
			want: []types.Stage{types.StageInReview, types.StageInterview, types.StageOffer},
		},
		{
			name:    "in review is mandatory",
			in:      []types.Stage{types.StageInterview},
			wantErr: true,
		},
		{
			name:    "unknown stage",
			in:      []types.Stage{types.StageInReview, "background_check"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEnabled(tt.in)
			if tt.wantErr {
				var vErr *types.ErrValidation
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "enabled_stages", vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextStage(t *testing.T) {
	enabled := []types.Stage{types.StageInReview, types.StageInterview, types.StageOffer}

	tests := []struct {
		current types.Stage
		want    types.Stage
		ok      bool
	}{
		{types.StageInReview, types.StageInterview, true},
		{types.StageShortlisted, types.StageInterview, true},
		{types.StageInterview, types.StageOffer, true},
		{types.StageOffer, "", false},
		{"unknown", "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			got, ok := NextStage(tt.current, enabled)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, HasNextStages(tt.current, enabled))
		})
	}
}

func TestNextStage_AllEnabled(t *testing.T) {
	all := Stages()
	for i, s := range all[:len(all)-1] {
		next, ok := NextStage(s, all)
		require.True(t, ok)
		assert.Equal(t, all[i+1], next)
	}
	assert.False(t, HasNextStages(types.StageOffer, all))
}

func TestValidateMove(t *testing.T) {
	enabled := []types.Stage{types.StageInReview, types.StageShortlisted, types.StageInterview, types.StageOffer}

	tests := []struct {
		name       string
		current    types.Stage
		currentSub types.SubStage
		target     types.Stage
		wantErr    string
	}{
		{
			name:       "next stage",
			current:    types.StageInReview,
			currentSub: types.SubStagePending,
			target:     types.StageShortlisted,
		},
		{
			name:       "skip forward",
			current:    types.StageInReview,
			currentSub: types.SubStageProfileReviewed,
			target:     types.StageOffer,
		},
		{
			name:       "disabled stage",
			current:    types.StageInterview,
			currentSub: types.SubStageCompleted,
			target:     types.StageTechnicalTask,
			wantErr:    "not enabled",
		},
		{
			name:       "backwards",
			current:    types.StageInterview,
			currentSub: types.SubStageScheduled,
			target:     types.StageShortlisted,
			wantErr:    "cannot move back",
		},
		{
			name:       "same stage",
			current:    types.StageInterview,
			currentSub: types.SubStageScheduled,
			target:     types.StageInterview,
			wantErr:    "already in Interview",
		},
		{
			name:       "rejected application",
			current:    types.StageShortlisted,
			currentSub: types.SubStageRejected,
			target:     types.StageInterview,
			wantErr:    "can no longer move",
		},
		{
			name:       "unknown target",
			current:    types.StageInReview,
			currentSub: types.SubStagePending,
			target:     "hired",
			wantErr:    "unknown stage",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMove(tt.current, tt.currentSub, tt.target, enabled)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var vErr *types.ErrValidation
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Message, tt.wantErr)
		})
	}
}

func TestValidateSubStage(t *testing.T) {
	require.NoError(t, ValidateSubStage(types.StageInterview, types.SubStageNotScheduled, types.SubStageScheduled))
	require.NoError(t, ValidateSubStage(types.StageOffer, types.SubStageSigned, types.SubStageHired))

	err := ValidateSubStage(types.StageInterview, types.SubStageScheduled, types.SubStageSigned)
	assert.ErrorContains(t, err, "not a sub-stage of Interview")

	err = ValidateSubStage(types.StageInterview, types.SubStageScheduled, types.SubStageScheduled)
	assert.ErrorContains(t, err, "already Scheduled")

	err = ValidateSubStage(types.StageOffer, types.SubStageHired, types.SubStageSigned)
	assert.ErrorContains(t, err, "can no longer move")
}

func TestValidateReject(t *testing.T) {
	assert.NoError(t, ValidateReject(types.SubStagePending))
	assert.Error(t, ValidateReject(types.SubStageRejected))
	assert.Error(t, ValidateReject(types.SubStageHired))
}

func TestAdvance(t *testing.T) {
	sub, ok := Advance(types.StageInterview, types.SubStageNotScheduled, types.SubStageScheduled)
	assert.True(t, ok)
	assert.Equal(t, types.SubStageScheduled, sub)

	_, ok = Advance(types.StageShortlisted, types.SubStageContacted, types.SubStageScheduled)
	assert.False(t, ok, "shortlisted has no scheduled sub-stage")

	_, ok = Advance(types.StageInterview, types.SubStageScheduled, types.SubStageScheduled)
	assert.False(t, ok)

	_, ok = Advance(types.StageInterview, types.SubStageRejected, types.SubStageCompleted)
	assert.False(t, ok)

	_, ok = Advance(types.StageOffer, types.SubStageSigned, types.SubStageSent)
	assert.False(t, ok, "a second offer does not undo a signature")

	_, ok = Advance(types.StageCompensation, types.SubStageApproved, types.SubStageNegotiating)
	assert.False(t, ok)

	sub, ok = Advance(types.StageOffer, types.SubStageNotSent, types.SubStageSigned)
	assert.True(t, ok, "forward jumps are allowed")
	assert.Equal(t, types.SubStageSigned, sub)
}
