package lineproto

// Opcode is the command-name token at the start of a request line.
type Opcode string

// Opcodes of the line protocol.
const (
	OpAddStudent   Opcode = "ADD_STUDENT"
	OpAddCourse    Opcode = "ADD_COURSE"
	OpEnroll       Opcode = "ENROLL"
	OpMark         Opcode = "MARK"
	OpListStudents Opcode = "LIST_STUDENTS"
	OpListCourses  Opcode = "LIST_COURSES"
	OpReportByRoll Opcode = "REPORT_BY_ROLL"
	OpReportByCode Opcode = "REPORT_BY_CODE"
	OpSummary      Opcode = "SUMMARY"
	OpPing         Opcode = "PING"

	// OpAttend is only produced by the legacy ATT framing.
	OpAttend Opcode = "ATT"
)

type opInfo struct {
	arity   int
	streams bool
}

// opTable is the static arity table. OpAttend is absent on purpose:
// it cannot be sent with the space-separated framing.
var opTable = map[Opcode]opInfo{
	OpAddStudent:   {arity: 2},
	OpAddCourse:    {arity: 2},
	OpEnroll:       {arity: 2},
	OpMark:         {arity: 4},
	OpListStudents: {arity: 0, streams: true},
	OpListCourses:  {arity: 0, streams: true},
	OpReportByRoll: {arity: 1, streams: true},
	OpReportByCode: {arity: 1, streams: true},
	OpSummary:      {arity: 1, streams: true},
	OpPing:         {arity: 0},
}

// legacyArity is the number of '|' separated fields after the ATT token.
const legacyArity = 4

// Known reports whether op can be sent with the standard framing.
func (op Opcode) Known() bool {
	_, ok := opTable[op]
	return ok
}

// Arity returns the number of payload fields op requires.
func (op Opcode) Arity() int {
	if op == OpAttend {
		return legacyArity
	}
	return opTable[op].arity
}

// Streams reports whether op answers with a row stream instead of a status line.
func (op Opcode) Streams() bool {
	return opTable[op].streams
}

// Opcodes returns all opcodes accepted by the standard framing.
func Opcodes() []Opcode {
	return []Opcode{
		OpAddStudent, OpAddCourse, OpEnroll, OpMark,
		OpListStudents, OpListCourses, OpReportByRoll, OpReportByCode,
		OpSummary, OpPing,
	}
}
