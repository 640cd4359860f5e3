package fetch

// Mode selects the output shape of a fetch. The set of valid modes depends
// on the operation: single-row tags are rejected by FetchAll and the keyed
// and grouped tags are rejected by FetchOne.
type Mode int

const (
	ModeAssoc Mode = iota
	ModeObj
	ModeNum
	ModeCol
	ModeScalar
	ModeSingleRowAssoc
	ModeSingleRowObj
	ModeSingleRowNum
	ModeKeyPair
	ModeKeyPairArr
	ModeGroup
	ModeGroupCol
	ModeGroupObj
)

var modeTags = map[Mode]string{
	ModeAssoc:          "assoc",
	ModeObj:            "obj",
	ModeNum:            "num",
	ModeCol:            "col",
	ModeScalar:         "scalar",
	ModeSingleRowAssoc: "singleRowAssoc",
	ModeSingleRowObj:   "singleRowObj",
	ModeSingleRowNum:   "singleRowNum",
	ModeKeyPair:        "keyPair",
	ModeKeyPairArr:     "keyPairArr",
	ModeGroup:          "group",
	ModeGroupCol:       "groupCol",
	ModeGroupObj:       "groupObj",
}

func (m Mode) String() string {
	if tag, ok := modeTags[m]; ok {
		return tag
	}
	return "unknown"
}

// ParseMode maps a mode tag to its Mode. The second return is false for a
// tag outside the recognized set.
func ParseMode(tag string) (Mode, bool) {
	for m, t := range modeTags {
		if t == tag {
			return m, true
		}
	}
	return 0, false
}

// Op identifies which fetch operation a mode is validated against.
type Op int

const (
	OpSingle Op = iota
	OpAll
)

func (op Op) String() string {
	if op == OpSingle {
		return "fetchOne"
	}
	return "fetchAll"
}

var singleModes = []Mode{
	ModeAssoc, ModeObj, ModeNum, ModeCol, ModeScalar,
	ModeSingleRowAssoc, ModeSingleRowObj, ModeSingleRowNum,
}

var allModes = []Mode{
	ModeAssoc, ModeObj, ModeNum, ModeCol,
	ModeKeyPair, ModeKeyPairArr, ModeGroup, ModeGroupCol, ModeGroupObj,
}

func allowedModes(op Op) []Mode {
	if op == OpSingle {
		return singleModes
	}
	return allModes
}

func allowedTags(op Op) []string {
	modes := allowedModes(op)
	tags := make([]string, len(modes))
	for i, m := range modes {
		tags[i] = m.String()
	}
	return tags
}

// objectMode reports whether a mode produces mapped objects, the only
// shapes a caller-supplied Mapper is valid for.
func objectMode(m Mode) bool {
	switch m {
	case ModeObj, ModeSingleRowObj, ModeGroupObj:
		return true
	}
	return false
}
