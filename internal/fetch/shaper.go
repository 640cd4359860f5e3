package fetch

// Shaper validates a requested fetch mode and reshapes cursor rows into the
// mode's output. It holds no per-result state; the cursor position lives in
// the Result handle passed to each call.
type Shaper struct {
	defaultMode Mode
}

type ShaperOption func(*Shaper)

// WithDefaultMode sets the mode used when a call passes an empty tag.
func WithDefaultMode(m Mode) ShaperOption {
	return func(s *Shaper) {
		s.defaultMode = m
	}
}

func NewShaper(opts ...ShaperOption) *Shaper {
	s := &Shaper{defaultMode: ModeAssoc}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type fetchOptions struct {
	mapper Mapper
}

type Option func(*fetchOptions)

// WithMapper supplies the row mapper for object-producing modes. Passing it
// with any other mode is an InvalidModeError.
func WithMapper(m Mapper) Option {
	return func(o *fetchOptions) {
		o.mapper = m
	}
}

// resolve runs the full mode validation for one call: tag membership in the
// operation's allowed set, mapper compatibility, then column arity. It runs
// before any row is read, so a rejected call never advances the cursor.
func (s *Shaper) resolve(tag string, op Op, columnCount int, o fetchOptions) (Mode, error) {
	var mode Mode
	if tag == "" {
		mode = s.defaultMode
	} else {
		var ok bool
		mode, ok = ParseMode(tag)
		if !ok {
			return 0, newUnknownModeError(tag, op)
		}
	}

	inSet := false
	for _, m := range allowedModes(op) {
		if m == mode {
			inSet = true
			break
		}
	}
	if !inSet {
		return 0, newUnknownModeError(mode.String(), op)
	}

	if o.mapper != nil && !objectMode(mode) {
		return 0, newMapperModeError(mode, op)
	}

	switch mode {
	case ModeCol, ModeScalar:
		if columnCount != 1 {
			return 0, &ColumnArityError{Mode: mode, Want: 1, Exact: true, Got: columnCount}
		}
	case ModeKeyPair, ModeGroupCol:
		if columnCount != 2 {
			return 0, &ColumnArityError{Mode: mode, Want: 2, Exact: true, Got: columnCount}
		}
	case ModeKeyPairArr, ModeGroup, ModeGroupObj:
		if columnCount < 2 {
			return 0, &ColumnArityError{Mode: mode, Want: 2, Got: columnCount}
		}
	}

	return mode, nil
}

// FetchOne advances the cursor by one row and returns it shaped per mode.
// The second return is false once the cursor is exhausted, which is the
// only way to tell "no more rows" from a row of empty values.
func (s *Shaper) FetchOne(res Result, tag string, opts ...Option) (any, bool, error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	cols := res.Columns()
	mode, err := s.resolve(tag, OpSingle, len(cols), o)
	if err != nil {
		return nil, false, err
	}

	row, err := res.Next()
	if err != nil {
		return nil, false, &ExecutionError{Err: err}
	}
	if row == nil {
		return nil, false, nil
	}

	switch mode {
	case ModeNum, ModeSingleRowNum:
		return row, true, nil
	case ModeAssoc, ModeSingleRowAssoc:
		return NewRecord(cols, row), true, nil
	case ModeObj, ModeSingleRowObj:
		obj, err := o.mapperOrRecord()(cols, row)
		if err != nil {
			return nil, false, err
		}
		return obj, true, nil
	case ModeCol, ModeScalar:
		return row[0], true, nil
	}
	return nil, false, newUnknownModeError(mode.String(), OpSingle)
}

// FetchAll drains the cursor and returns the aggregate for the mode. Zero
// rows yield the shape's empty form, never nil. A read failure aborts the
// whole call; no partial aggregate is returned.
func (s *Shaper) FetchAll(res Result, tag string, opts ...Option) (any, error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	cols := res.Columns()
	mode, err := s.resolve(tag, OpAll, len(cols), o)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeNum:
		out := make([]Row, 0)
		err = eachRow(res, func(row Row) error {
			out = append(out, row)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case ModeAssoc:
		out := make([]Record, 0)
		err = eachRow(res, func(row Row) error {
			out = append(out, NewRecord(cols, row))
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case ModeObj:
		mapper := o.mapperOrRecord()
		out := make([]any, 0)
		err = eachRow(res, func(row Row) error {
			obj, err := mapper(cols, row)
			if err != nil {
				return err
			}
			out = append(out, obj)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case ModeCol:
		out := make([]any, 0)
		err = eachRow(res, func(row Row) error {
			out = append(out, row[0])
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case ModeKeyPair:
		out := NewOrderedMap()
		err = eachRow(res, func(row Row) error {
			out.Set(keyOf(row[0]), row[1])
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case ModeKeyPairArr:
		out := NewOrderedMap()
		err = eachRow(res, func(row Row) error {
			out.Set(keyOf(row[0]), NewRecord(cols[1:], row[1:]))
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case ModeGroup:
		out := NewOrderedMap()
		err = eachRow(res, func(row Row) error {
			key := keyOf(row[0])
			bucket, _ := out.Get(key)
			group, _ := bucket.([]Record)
			out.Set(key, append(group, NewRecord(cols[1:], row[1:])))
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case ModeGroupCol:
		out := NewOrderedMap()
		err = eachRow(res, func(row Row) error {
			key := keyOf(row[0])
			bucket, _ := out.Get(key)
			group, _ := bucket.([]any)
			out.Set(key, append(group, row[1]))
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case ModeGroupObj:
		mapper := o.mapperOrRecord()
		out := NewOrderedMap()
		err = eachRow(res, func(row Row) error {
			obj, err := mapper(cols[1:], row[1:])
			if err != nil {
				return err
			}
			key := keyOf(row[0])
			bucket, _ := out.Get(key)
			group, _ := bucket.([]any)
			out.Set(key, append(group, obj))
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, newUnknownModeError(mode.String(), OpAll)
}

func (o fetchOptions) mapperOrRecord() Mapper {
	if o.mapper != nil {
		return o.mapper
	}
	return recordMapper
}

// eachRow drains the cursor, stopping on the first driver or shaping error.
func eachRow(res Result, fn func(Row) error) error {
	for {
		row, err := res.Next()
		if err != nil {
			return &ExecutionError{Err: err}
		}
		if row == nil {
			return nil
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// keyOf normalizes a key column value so it is usable as a map key. Byte
// slices arrive from drivers for text columns and are not comparable.
func keyOf(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
