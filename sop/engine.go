package sop

import "fmt"

// Engine coordinates the store, the compiled-script cache, the validator,
// and the document compiler. The compile/validate functions themselves are
// pure; the engine only adds persistence and caching around them.
type Engine struct {
	store     SOPStore
	cache     ScriptCache
	compiler  *DocumentCompiler
	validator Validator
}

// NewEngine creates an engine over the given store with a default cache,
// compiler, and lenient validator.
func NewEngine(store SOPStore) *Engine {
	return &Engine{
		store:     store,
		cache:     NewInMemoryScriptCache(DefaultCacheConfig()),
		compiler:  NewDocumentCompiler(),
		validator: Validator{},
	}
}

// NewEngineWithValidator creates an engine with a custom validator, e.g.
// one with StrictOperators enabled.
func NewEngineWithValidator(store SOPStore, v Validator) *Engine {
	en := NewEngine(store)
	en.validator = v
	return en
}

// Validate runs the structural pre-flight for a SOP snapshot.
func (en *Engine) Validate(s SOP) ValidationResult {
	return en.validator.Validate(s)
}

// Compile compiles a SOP snapshot and returns the script together with the
// pre-flight diagnostics. Compilation always succeeds; the diagnostics are
// advisory and never gate the preview path.
func (en *Engine) Compile(s SOP) (string, ValidationResult) {
	return en.compiler.Compile(s), en.validator.Validate(s)
}

// Create validates and persists a new SOP. Blocking validation errors
// refuse the write; warnings do not.
func (en *Engine) Create(s *SOP) error {
	if res := en.validator.Validate(*s); !res.Valid() {
		return &ValidationError{Result: res}
	}

	if err := en.store.Add(s); err != nil {
		return fmt.Errorf("failed to store sop: %w", err)
	}

	return nil
}

// Update validates and persists changes to an existing SOP, then drops the
// stale cached script.
func (en *Engine) Update(s *SOP) error {
	if res := en.validator.Validate(*s); !res.Valid() {
		return &ValidationError{Result: res}
	}

	if err := en.store.Update(s); err != nil {
		return err
	}

	en.cache.Invalidate(s.ID)
	return nil
}

// Delete removes a SOP and its cached script.
func (en *Engine) Delete(id string) error {
	if err := en.store.Delete(id); err != nil {
		return err
	}

	en.cache.Invalidate(id)
	return nil
}

// Get retrieves a stored SOP.
func (en *Engine) Get(id string) (*SOP, error) {
	return en.store.Get(id)
}

// List returns all stored SOPs.
func (en *Engine) List() ([]*SOP, error) {
	return en.store.List()
}

// CompileByID compiles a stored SOP, serving the script from cache when
// possible. Diagnostics are recomputed on every call; they are cheap and
// must reflect the stored document, not the cached artifact.
func (en *Engine) CompileByID(id string) (string, ValidationResult, error) {
	doc, err := en.store.Get(id)
	if err != nil {
		return "", ValidationResult{}, err
	}

	res := en.validator.Validate(*doc)

	if script, ok := en.cache.Get(id); ok {
		return script, res, nil
	}

	script := en.compiler.Compile(*doc)
	en.cache.Set(id, script)
	return script, res, nil
}
