package businesses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/internal/repository/mongodb"
)

type memoryRepo struct {
	byID map[string]models.Business
	err  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: map[string]models.Business{}}
}

func (m *memoryRepo) Insert(_ context.Context, b models.Business) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[b.ID]; ok {
		return mongodb.ErrDuplicate
	}
	m.byID[b.ID] = b
	return nil
}

func (m *memoryRepo) find(match func(models.Business) bool) (*models.Business, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, b := range m.byID {
		if match(b) {
			return &b, nil
		}
	}
	return nil, mongodb.ErrNotFound
}

func (m *memoryRepo) FindByID(_ context.Context, id string) (*models.Business, error) {
	return m.find(func(b models.Business) bool { return b.ID == id })
}

func (m *memoryRepo) FindByBusinessID(_ context.Context, id string) (*models.Business, error) {
	return m.find(func(b models.Business) bool { return b.BusinessID == id })
}

func (m *memoryRepo) FindByPhoneNumber(_ context.Context, phone string) (*models.Business, error) {
	return m.find(func(b models.Business) bool { return b.PhoneNumber == phone })
}

func (m *memoryRepo) List(context.Context) ([]models.Business, error) {
	out := make([]models.Business, 0, len(m.byID))
	for _, b := range m.byID {
		out = append(out, b)
	}
	return out, m.err
}

func sample() models.Business {
	return models.Business{
		Name:             "Boroma Farms",
		OwnerID:          "owner-1",
		BusinessID:       "106540352242922",
		PhoneNumber:      "15550783881",
		RapidProChannel:  "c07fae3b",
		SubscriptionPlan: "basic",
	}
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "businesses/boroma_farms", DocumentID("Boroma Farms"))
	assert.Equal(t, "businesses/kabolabs", DocumentID(" KaboLabs "))
}

func TestRegisterAndLookup(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	registered, err := svc.Register(ctx, sample())
	require.NoError(t, err)
	assert.Equal(t, "businesses/boroma_farms", registered.ID)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), registered.CreatedAt)

	byNumberID, err := svc.FindByPhoneNumberID(ctx, "106540352242922")
	require.NoError(t, err)
	assert.Equal(t, "c07fae3b", byNumberID.RapidProChannel)

	byPhone, err := svc.FindByPhoneNumber(ctx, "15550783881")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byPhone.ID)

	got, err := svc.Get(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "Boroma Farms", got.Name)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegister_Duplicate(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Register(context.Background(), sample())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), sample())
	assert.ErrorIs(t, err, ErrBusinessExists)
}

func TestLookup_NotFound(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.FindByPhoneNumberID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBusinessNotFound)

	_, err = svc.Get(context.Background(), "businesses/missing")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestLookup_StorageError(t *testing.T) {
	repo := newMemoryRepo()
	repo.err = errors.New("server selection timeout")
	svc := NewService(repo, nil)

	_, err := svc.FindByPhoneNumber(context.Background(), "1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBusinessNotFound))
}
