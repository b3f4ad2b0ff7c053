package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"stealthcompany.com/patients/internal/patient"
	"stealthcompany.com/patients/internal/store"
)

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

type ServiceSuite struct {
	suite.Suite
	store   *store.MemoryStore
	service *Service
	ctx     context.Context
}

func seed() map[string]patient.Record {
	return map[string]patient.Record{
		"P001": {Name: "Ananya Verma", City: "Guwahati", Age: 28, Gender: patient.GenderFemale, Height: 1.65, Weight: 90},
		"P002": {Name: "Ravi Mehta", City: "Mumbai", Age: 35, Gender: patient.GenderMale, Height: 1.75, Weight: 85},
		"P003": {Name: "Sneha Kulkarni", City: "Pune", Age: 22, Gender: patient.GenderFemale, Height: 1.60, Weight: 45},
	}
}

func (suite *ServiceSuite) SetupTest() {
	suite.store = store.NewMemoryStore(seed())
	suite.service = NewService(suite.store)
	suite.ctx = context.Background()
}

func (suite *ServiceSuite) TestListMaterializesEveryRecord() {
	patients, err := suite.service.List(suite.ctx)
	suite.Require().NoError(err)
	suite.Assert().Len(patients, 3)
	for id, p := range patients {
		suite.Assert().Equal(id, p.ID)
		suite.Assert().Equal(patient.BMI(p.Height, p.Weight), p.BMI)
		suite.Assert().Equal(patient.VerdictFor(p.BMI), p.Verdict)
	}
}

func (suite *ServiceSuite) TestCreateThenGetRoundTrip() {
	require := suite.Require()
	np := patient.NewPatient{
		ID:     "P004",
		Record: patient.Record{Name: "Arjun", City: "Delhi", Age: 40, Gender: patient.GenderMale, Height: 1.8, Weight: 70},
	}

	created, err := suite.service.Create(suite.ctx, np)
	require.NoError(err)

	got, err := suite.service.Get(suite.ctx, "P004")
	require.NoError(err)
	suite.Assert().Equal(created, got)
	suite.Assert().InDelta(21.6, got.BMI, 1e-9)
	suite.Assert().Equal(patient.VerdictNormal, got.Verdict)
}

func (suite *ServiceSuite) TestCreateDuplicateIsConflict() {
	np := patient.NewPatient{
		ID:     "P001",
		Record: patient.Record{Name: "Impostor", City: "Nowhere", Age: 50, Gender: patient.GenderOther, Height: 1.5, Weight: 50},
	}

	_, err := suite.service.Create(suite.ctx, np)
	suite.Assert().ErrorIs(err, patient.ErrConflict)

	got, err := suite.service.Get(suite.ctx, "P001")
	suite.Require().NoError(err)
	suite.Assert().Equal(seed()["P001"], got.Record)
	suite.Assert().Equal(0, suite.store.Saves())
}

func (suite *ServiceSuite) TestCreateInvalidDoesNotSave() {
	np := patient.NewPatient{ID: "P009", Record: patient.Record{Name: "X", City: "Y", Age: 130, Gender: "male", Height: 1.7, Weight: 60}}

	_, err := suite.service.Create(suite.ctx, np)

	var verr *patient.ValidationError
	suite.Assert().ErrorAs(err, &verr)
	suite.Assert().Equal(0, suite.store.Saves())
}

func (suite *ServiceSuite) TestUpdateOnlyWeight() {
	require := suite.Require()
	before, err := suite.service.Get(suite.ctx, "P002")
	require.NoError(err)

	weight := 80.0
	after, err := suite.service.Update(suite.ctx, "P002", patient.Update{Weight: &weight})
	require.NoError(err)

	expected := before.Record
	expected.Weight = 80
	suite.Assert().Equal(expected, after.Record)
	suite.Assert().Equal("P002", after.ID)
	suite.Assert().InDelta(26.12, after.BMI, 1e-9)

	stored, err := suite.service.Get(suite.ctx, "P002")
	require.NoError(err)
	suite.Assert().Equal(after, stored)
}

func (suite *ServiceSuite) TestEmptyUpdateSkipsSave() {
	before, err := suite.service.Get(suite.ctx, "P001")
	suite.Require().NoError(err)

	after, err := suite.service.Update(suite.ctx, "P001", patient.Update{})
	suite.Require().NoError(err)
	suite.Assert().Equal(before, after)
	suite.Assert().Equal(0, suite.store.Saves())

	_, err = suite.service.Update(suite.ctx, "P404", patient.Update{})
	suite.Assert().ErrorIs(err, patient.ErrNotFound)
}

func (suite *ServiceSuite) TestUpdateMissingIsNotFound() {
	name := "Ghost"
	_, err := suite.service.Update(suite.ctx, "P404", patient.Update{Name: &name})
	suite.Assert().ErrorIs(err, patient.ErrNotFound)
	suite.Assert().Equal(0, suite.store.Saves())
}

func (suite *ServiceSuite) TestUpdateRejectedWhenMergedRecordInvalid() {
	age := 150
	_, err := suite.service.Update(suite.ctx, "P001", patient.Update{Age: &age})

	var verr *patient.ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Assert().Equal("age", verr.Fields[0].Field)
	suite.Assert().Equal(0, suite.store.Saves())

	got, err := suite.service.Get(suite.ctx, "P001")
	suite.Require().NoError(err)
	suite.Assert().Equal(28, got.Age)
}

func (suite *ServiceSuite) TestDelete() {
	suite.Require().NoError(suite.service.Delete(suite.ctx, "P003"))

	_, err := suite.service.Get(suite.ctx, "P003")
	suite.Assert().ErrorIs(err, patient.ErrNotFound)

	err = suite.service.Delete(suite.ctx, "P003")
	suite.Assert().ErrorIs(err, patient.ErrNotFound)
	suite.Assert().Equal(1, suite.store.Saves())
}

func (suite *ServiceSuite) TestSorted() {
	asc, err := suite.service.Sorted(suite.ctx, "bmi", "asc")
	suite.Require().NoError(err)
	suite.Assert().Equal([]string{"P003", "P002", "P001"}, idsOf(asc))

	desc, err := suite.service.Sorted(suite.ctx, "bmi", "desc")
	suite.Require().NoError(err)
	suite.Assert().Equal([]string{"P001", "P002", "P003"}, idsOf(desc))

	byHeight, err := suite.service.Sorted(suite.ctx, "height", "")
	suite.Require().NoError(err)
	suite.Assert().Equal([]string{"P003", "P001", "P002"}, idsOf(byHeight))
}

func (suite *ServiceSuite) TestSortedBadQueryDoesNotTouchStore() {
	failing := &failingStore{loadErr: errors.New("should not be called")}
	svc := NewService(failing)

	_, err := svc.Sorted(suite.ctx, "foo", "asc")
	suite.Assert().ErrorIs(err, patient.ErrBadQuery)

	_, err = svc.Sorted(suite.ctx, "bmi", "sideways")
	suite.Assert().ErrorIs(err, patient.ErrBadQuery)
	suite.Assert().Equal(0, failing.loads)
}

func idsOf(ps []patient.Patient) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

type failingStore struct {
	loadErr error
	saveErr error
	loads   int
}

func (f *failingStore) Load(ctx context.Context) (map[string]patient.Record, error) {
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return seed(), nil
}

func (f *failingStore) Save(ctx context.Context, records map[string]patient.Record) error {
	return f.saveErr
}

func TestStorageFailuresSurface(t *testing.T) {
	ctx := context.Background()

	svc := NewService(&failingStore{loadErr: fmt.Errorf("%w: disk gone", patient.ErrStorageUnavailable)})
	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, patient.ErrStorageUnavailable)

	svc = NewService(&failingStore{saveErr: errors.New("quota exceeded")})
	err = svc.Delete(ctx, "P001")
	assert.ErrorIs(t, err, patient.ErrStorageUnavailable)
	assert.Equal(t, "storage_unavailable", Outcome(err))
}

func TestConcurrentCreatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore(nil)
	svc := NewService(ms)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(ctx, patient.NewPatient{
				ID:     fmt.Sprintf("C%02d", i),
				Record: patient.Record{Name: "N", City: "C", Age: 20 + i, Gender: patient.GenderOther, Height: 1.7, Weight: 60},
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(fmt.Errorf("%w: x", patient.ErrNotFound)))
	assert.Equal(t, "conflict", Outcome(patient.ErrConflict))
	assert.Equal(t, "bad_query", Outcome(patient.ErrBadQuery))
	assert.Equal(t, "validation_failed", Outcome(patient.NewTypeError("age", "integer")))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}
