package graph

import "reflect"

// StateSchema describes how a graph initializes its state and folds node
// updates into it.
type StateSchema[S any] interface {
	// Init returns the state the graph starts from, before the caller's
	// initial input is merged.
	Init() S

	// Update merges a node's returned update into the current state.
	Update(current, update S) (S, error)
}

// StructSchema is a StateSchema for struct states.
//
// A nil MergeFunc gets a reflect-based default that overwrites every non-zero
// exported field of the update onto the current state, which covers the
// common "nodes return deltas" pattern without a custom merger.
type StructSchema[S any] struct {
	InitialValue S
	MergeFunc    func(current, update S) (S, error)
}

var _ StateSchema[struct{}] = (*StructSchema[struct{}])(nil)

// NewStructSchema creates a StructSchema with the given initial value and
// merge function. Pass nil to use the default non-zero-field merge.
func NewStructSchema[S any](initial S, merge func(current, update S) (S, error)) *StructSchema[S] {
	if merge == nil {
		merge = defaultStructMerge[S]
	}
	return &StructSchema[S]{
		InitialValue: initial,
		MergeFunc:    merge,
	}
}

// Init returns the schema's initial state.
func (s *StructSchema[S]) Init() S {
	return s.InitialValue
}

// Update merges update into current using the schema's merge function.
func (s *StructSchema[S]) Update(current, update S) (S, error) {
	return s.MergeFunc(current, update)
}

// defaultStructMerge overwrites non-zero exported fields of update onto
// current. Non-struct states are replaced wholesale.
func defaultStructMerge[S any](current, update S) (S, error) {
	cv := reflect.ValueOf(&current).Elem()
	if cv.Kind() != reflect.Struct {
		return update, nil
	}

	uv := reflect.ValueOf(update)
	for i := 0; i < uv.NumField(); i++ {
		field := uv.Field(i)
		if !cv.Field(i).CanSet() {
			continue
		}
		if !field.IsZero() {
			cv.Field(i).Set(field)
		}
	}
	return current, nil
}
