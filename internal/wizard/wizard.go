// Package wizard accumulates the multi-step recommendation form. The draft
// is a loosely-typed field map persisted between steps; location fields are
// kept as both the human-readable name (for submission and display) and the
// numeric administrative code (for dependent queries).
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/raihasa-dev/raihasa/internal/api"
	"github.com/raihasa-dev/raihasa/internal/storage"
)

// Draft is the accumulated, partially-validated answer set. Values are
// loosely typed; steps check presence only.
type Draft map[string]any

// Location fields and their derived code slots
const (
	FieldProvince     = "provinsi"
	FieldProvinceCode = "provinsi_code"
	FieldCity         = "kota_kabupaten"
	FieldCityCode     = "kota_kabupaten_code"
)

// ErrMissingField happens when a step is submitted without one of its
// required fields.
var ErrMissingField = errors.New("missing required field")

// ErrUnknownStep happens when a step name is not part of the wizard
var ErrUnknownStep = errors.New("unknown wizard step")

// Step is one page of the wizard with its required fields
type Step struct {
	Name     string
	Required []string
}

// Steps in wizard order
var Steps = []Step{
	{Name: "profile", Required: []string{"name", "email"}},
	{Name: "domicile", Required: []string{FieldProvince, FieldCity}},
	{Name: "education", Required: []string{"jenjang", "jurusan"}},
	{Name: "preferences", Required: []string{"negara_tujuan", "jalur_beasiswa"}},
}

// Store holds one user's draft and the reference lists used to resolve
// location fields between code and name.
type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	key       string
	log       zerolog.Logger
	provinces []api.Region
	cities    []api.Region
}

// NewStore creates a draft store for one user
func NewStore(kv storage.KV, userID string, log zerolog.Logger) *Store {
	return &Store{
		kv:  kv,
		key: storage.WizardDraftPrefix + ":" + userID,
		log: log,
	}
}

// Load returns the persisted draft, or an empty one when none exists
func (s *Store) Load(ctx context.Context) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// NextStep validates the step's required fields, resolves location values
// and merges the fields into the persisted draft. The merge is additive:
// last write wins per field, nothing is dropped.
func (s *Store) NextStep(ctx context.Context, step string, fields Draft) (Draft, error) {
	var found *Step
	for i := range Steps {
		if Steps[i].Name == step {
			found = &Steps[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}

	for _, name := range found.Required {
		if isBlank(fields[name]) {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, name)
		}
	}

	return s.Merge(ctx, fields)
}

// Merge resolves location fields in the incoming values, merges them into
// the stored draft and persists the result.
func (s *Store) Merge(ctx context.Context, fields Draft) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	s.resolveLocked(fields)
	for name, value := range fields {
		draft[name] = value
	}
	s.resolveLocked(draft)

	if err := s.saveLocked(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SetProvinces installs the province reference list and re-resolves any
// stored location values that were waiting for it. A previously stored
// name gains its code (or the reverse) without user action.
func (s *Store) SetProvinces(ctx context.Context, list []api.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provinces = list
	s.reresolveLocked(ctx)
}

// SetCities installs the city reference list for the selected province and
// re-resolves the stored draft against it.
func (s *Store) SetCities(ctx context.Context, list []api.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities = list
	s.reresolveLocked(ctx)
}

// Clear deletes the persisted draft, typically after a final submission
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(ctx, s.key)
}

func (s *Store) loadLocked(ctx context.Context) (Draft, error) {
	data, err := s.kv.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Draft{}, nil
		}
		return nil, err
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		// A corrupt draft is recoverable: start over rather than fail
		s.log.Warn().Err(err).Msg("Corrupt wizard draft, starting fresh")
		return Draft{}, nil
	}
	return draft, nil
}

func (s *Store) saveLocked(ctx context.Context, draft Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to serialize draft: %w", err)
	}
	if err := s.kv.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to persist draft: %w", err)
	}
	return nil
}

// resolveLocked canonicalizes the location fields of d in place: the named
// field holds the region name, the derived slot holds the code. Values with
// no match in the loaded reference lists pass through unchanged; resolution
// happens later when the list arrives.
func (s *Store) resolveLocked(d Draft) {
	resolveField(d, s.provinces, FieldProvince, FieldProvinceCode)
	resolveField(d, s.cities, FieldCity, FieldCityCode)
}

// reresolveLocked reloads the stored draft and persists it again if a
// reference list made new resolutions possible.
func (s *Store) reresolveLocked(ctx context.Context) {
	draft, err := s.loadLocked(ctx)
	if err != nil || len(draft) == 0 {
		return
	}

	before, _ := json.Marshal(draft)
	s.resolveLocked(draft)
	after, _ := json.Marshal(draft)
	if string(before) == string(after) {
		return
	}
	if err := s.saveLocked(ctx, draft); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist re-resolved draft")
	}
}

func resolveField(d Draft, list []api.Region, nameField, codeField string) {
	raw, ok := d[nameField].(string)
	if !ok || raw == "" {
		return
	}
	code, name, found := resolve(list, raw)
	if !found {
		return
	}
	d[nameField] = name
	d[codeField] = code
}

// resolve returns the canonical (code, name) pair for v, which may be
// either a region code or a region name. Names compare case-insensitively.
func resolve(list []api.Region, v string) (code, name string, ok bool) {
	for _, region := range list {
		if region.Code == v || strings.EqualFold(region.Name, v) {
			return region.Code, region.Name, true
		}
	}
	return "", "", false
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
