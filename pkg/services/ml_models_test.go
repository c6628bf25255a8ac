package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/repositories"
)

func TestMLModelService_Create_Defaults(t *testing.T) {
	repo := &mockMLModelRepo{}
	svc := NewMLModelService(repo, zap.NewNop())

	body := bodyFromJSON(t, `{"name": "price-predictor", "model_type": "lstm"}`)

	model, err := svc.Create(ctxWithUser(uuid.New()), body)
	require.NoError(t, err)

	assert.Equal(t, "1", model.Version)
	assert.Equal(t, models.ModelStatusTraining, model.Status)
	assert.Nil(t, model.Hyperparameters)
	assert.Nil(t, model.Metrics)
}

func TestMLModelService_Create_ExplicitVersionAndStatus(t *testing.T) {
	repo := &mockMLModelRepo{}
	svc := NewMLModelService(repo, zap.NewNop())

	body := bodyFromJSON(t, `{
		"name": "price-predictor",
		"model_type": "lstm",
		"version": "2.1",
		"status": "ready",
		"hyperparameters": {"layers": 4}
	}`)

	model, err := svc.Create(ctxWithUser(uuid.New()), body)
	require.NoError(t, err)

	assert.Equal(t, "2.1", model.Version)
	assert.Equal(t, models.ModelStatusReady, model.Status)
	require.NotNil(t, model.Hyperparameters)
	assert.JSONEq(t, `{"layers": 4}`, *model.Hyperparameters)
}

func TestMLModelService_Create_UnknownType(t *testing.T) {
	repo := &mockMLModelRepo{}
	svc := NewMLModelService(repo, zap.NewNop())

	body := bodyFromJSON(t, `{"name": "p", "model_type": "quantum"}`)

	_, err := svc.Create(ctxWithUser(uuid.New()), body)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "INVALID_MODEL_TYPE", verr.Code)
	assert.Nil(t, repo.created)
}

func TestMLModelService_Create_OwnerFieldRejected(t *testing.T) {
	repo := &mockMLModelRepo{}
	svc := NewMLModelService(repo, zap.NewNop())

	body := bodyFromJSON(t, `{"name": "p", "model_type": "lstm", "owner_id": "abc"}`)

	_, err := svc.Create(ctxWithUser(uuid.New()), body)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "USER_ID_NOT_ALLOWED", verr.Code)
}

func TestMLModelService_Update_NonOwnerForbidden(t *testing.T) {
	owner := uuid.New()
	repo := &mockMLModelRepo{
		model: &models.MLModel{ID: uuid.New(), UserID: owner},
		owner: owner,
	}
	svc := NewMLModelService(repo, zap.NewNop())

	body := bodyFromJSON(t, `{"status": "deployed"}`)

	_, err := svc.Update(ctxWithUser(uuid.New()), repo.model.ID, body)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.Delete(ctxWithUser(uuid.New()), repo.model.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestMLModelService_Update_ClearingName(t *testing.T) {
	owner := uuid.New()
	repo := &mockMLModelRepo{model: &models.MLModel{ID: uuid.New(), UserID: owner}}
	svc := NewMLModelService(repo, zap.NewNop())

	for _, raw := range []string{`{"name": null}`, `{"name": ""}`} {
		_, err := svc.Update(ctxWithUser(owner), repo.model.ID, bodyFromJSON(t, raw))
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "MISSING_NAME", verr.Code)
	}
}

func TestMLModelService_Update_NullStatus(t *testing.T) {
	owner := uuid.New()
	repo := &mockMLModelRepo{model: &models.MLModel{ID: uuid.New(), UserID: owner}}
	svc := NewMLModelService(repo, zap.NewNop())

	_, err := svc.Update(ctxWithUser(owner), repo.model.ID, bodyFromJSON(t, `{"status": null}`))
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "INVALID_STATUS", verr.Code)
}

func TestMLModelService_Update_NullVersion(t *testing.T) {
	owner := uuid.New()
	repo := &mockMLModelRepo{model: &models.MLModel{ID: uuid.New(), UserID: owner}}
	svc := NewMLModelService(repo, zap.NewNop())

	for _, raw := range []string{`{"version": null}`, `{"version": ""}`} {
		_, err := svc.Update(ctxWithUser(owner), repo.model.ID, bodyFromJSON(t, raw))
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "MISSING_VERSION", verr.Code)
	}
}

func TestMLModelService_List_InvalidFilters(t *testing.T) {
	svc := NewMLModelService(&mockMLModelRepo{}, zap.NewNop())

	_, err := svc.List(ctxWithUser(uuid.New()), repositories.ListFilter{Status: "bogus"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "INVALID_STATUS", verr.Code)

	_, err = svc.List(ctxWithUser(uuid.New()), repositories.ListFilter{Type: "quantum"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "INVALID_TYPE", verr.Code)

	_, err = svc.List(ctxWithUser(uuid.New()), repositories.ListFilter{
		Status: models.ModelStatusReady,
		Type:   models.ModelTypeLSTM,
	})
	require.NoError(t, err)
}

func TestMLModelService_Get_AnyAuthenticatedUser(t *testing.T) {
	repo := &mockMLModelRepo{model: &models.MLModel{ID: uuid.New(), UserID: uuid.New()}}
	svc := NewMLModelService(repo, zap.NewNop())

	model, err := svc.Get(ctxWithUser(uuid.New()), repo.model.ID)
	require.NoError(t, err)
	assert.Equal(t, repo.model.ID, model.ID)
}

func TestMLModelService_NoIdentity(t *testing.T) {
	svc := NewMLModelService(&mockMLModelRepo{}, zap.NewNop())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.Error(t, err)
}
