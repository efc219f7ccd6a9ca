package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"bmr-backend/internal/bmr"
	"bmr-backend/internal/models"
	"bmr-backend/internal/store"
)

const SpecificationLookupLimit = 20

var ErrSubmitInProgress = errors.New("a save is already in progress")

// ValidationError lists the required fields left empty. No save is attempted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "missing required fields: " + strings.Join(names, ", ")
}

// Saver persists a row, inserting when row.ID is zero and updating otherwise.
// On insert it sets row.ID.
type Saver interface {
	SaveBMR(ctx context.Context, row *models.BMR) error
}

type SpecificationSearcher interface {
	SearchReports(ctx context.Context, q string, limit int) ([]store.ReportSummary, error)
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Deps struct {
	Mapper   bmr.Mapper
	Saver    Saver
	Specs    SpecificationSearcher
	Notifier Notifier
	Logger   *zap.Logger
}

// Controller owns one form session.
type Controller struct {
	mu      sync.Mutex
	state   State
	reducer Reducer
	deps    Deps
}

func NewController(rec bmr.Record, deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Controller{
		state:   NewState(rec),
		reducer: Reducer{Defaults: deps.Mapper.Defaults},
		deps:    deps,
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) Dispatch(a Action) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.reducer.Update(c.state, a)
	if err != nil {
		return c.state.clone(), err
	}
	c.state = next
	return next.clone(), nil
}

// LookupSpecification finds test reports whose number or product name
// contains q. An empty query returns nothing.
func (c *Controller) LookupSpecification(ctx context.Context, q string) ([]store.ReportSummary, error) {
	return LookupSpecification(ctx, c.deps.Specs, q)
}

func LookupSpecification(ctx context.Context, specs SpecificationSearcher, q string) ([]store.ReportSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" || specs == nil {
		return []store.ReportSummary{}, nil
	}
	rows, err := specs.SearchReports(ctx, q, SpecificationLookupLimit)
	if err != nil {
		return nil, err
	}
	if len(rows) > SpecificationLookupLimit {
		rows = rows[:SpecificationLookupLimit]
	}
	return rows, nil
}

// Validate returns the inline errors for required fields.
func Validate(rec bmr.Record) map[string]string {
	errs := map[string]string{}
	required := []struct {
		path, value, msg string
	}{
		{"productType", rec.ProductType, "Product type is required"},
		{"productName", rec.ProductName, "Product name is required"},
		{"productCode", rec.ProductCode, "Product code is required"},
		{"batchNo", rec.BatchNo, "Batch no is required"},
		{"typeOfPacking", rec.TypeOfPacking, "Type of packing is required"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs[f.path] = f.msg
		}
	}
	if rec.RawMaterialForSpecification == nil {
		errs["rawMaterialForSpecification"] = "Please select a raw material test report"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submit validates and saves the current record. On success onSuccess is
// called with the saved record. A failed save leaves the record as it was
// and produces exactly one error notice; nothing is retried.
func (c *Controller) Submit(ctx context.Context, authorID *uint, onSuccess func(bmr.Record)) error {
	c.mu.Lock()
	if c.state.Submitting() {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	if errs := Validate(c.state.Record); errs != nil {
		c.state.FieldErrors = errs
		c.mu.Unlock()
		return &ValidationError{Fields: errs}
	}
	c.state.FieldErrors = nil
	c.state.Status = StatusSubmitting
	rec := c.state.Record.Clone()
	c.mu.Unlock()

	saved := false
	defer func() {
		c.mu.Lock()
		c.state.Status = StatusIdle
		if saved {
			c.state.Record = rec.Clone()
		}
		c.mu.Unlock()
	}()

	RecomputeYield(&rec)
	isNew := rec.ID == 0
	err := c.save(ctx, &rec, authorID)
	if err != nil {
		c.deps.Logger.Warn("bmr save failed", zap.Uint("id", rec.ID), zap.Error(err))
		c.notify(false, "Failed to save BMR: "+err.Error())
		return fmt.Errorf("save bmr: %w", err)
	}
	saved = true

	msg := "BMR updated successfully"
	if isNew {
		msg = "BMR saved successfully"
	}
	c.deps.Logger.Info("bmr saved", zap.Uint("id", rec.ID), zap.String("type", string(rec.Type)))
	c.notify(true, msg)
	if onSuccess != nil {
		onSuccess(rec.Clone())
	}
	return nil
}

func (c *Controller) save(ctx context.Context, rec *bmr.Record, authorID *uint) error {
	if c.deps.Saver == nil {
		return errors.New("no saver configured")
	}
	row, err := c.deps.Mapper.ToPersisted(*rec, authorID)
	if err != nil {
		return err
	}
	if err := c.deps.Saver.SaveBMR(ctx, &row); err != nil {
		return err
	}
	rec.ID = row.ID
	return nil
}

func (c *Controller) notify(ok bool, msg string) {
	if c.deps.Notifier == nil {
		return
	}
	if ok {
		c.deps.Notifier.Success(msg)
	} else {
		c.deps.Notifier.Error(msg)
	}
}
