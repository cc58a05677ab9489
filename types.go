package goshape

// UnknownPolicy controls how object keys that no field declares are handled.
// The policy applies to every object reached during one Parse call.
type UnknownPolicy int

const (
	UnknownPassthrough UnknownPolicy = iota // Keep unknown keys in the result unchanged.
	UnknownStrip                            // Drop unknown keys from the result.
	UnknownStrict                           // Report each unknown key as unrecognized_key.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownPassthrough:
		return "passthrough"
	case UnknownStrip:
		return "strip"
	case UnknownStrict:
		return "strict"
	default:
		return "unknown_policy"
	}
}

// ParseUnknownPolicy maps "passthrough", "strip" or "strict" to a policy.
func ParseUnknownPolicy(s string) (UnknownPolicy, bool) {
	switch s {
	case "", "passthrough":
		return UnknownPassthrough, true
	case "strip":
		return UnknownStrip, true
	case "strict":
		return UnknownStrict, true
	}
	return UnknownPassthrough, false
}

// NumberMode dictates how sources materialize JSON/YAML numbers.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // float64 for every number.
	NumberJSONNumber                   // Keep json.Number text.
	NumberBigInt                       // float64, but integers beyond ±2^53 become *big.Int.
)

// Severity expresses the severity level for source-level findings.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures source enforcement.
type Strictness struct {
	OnDuplicateKey Severity // Ignore, Warn or Error.
}

// DefaultMaxDepth bounds input nesting when ParseOpt.MaxDepth is zero.
const DefaultMaxDepth = 10000

// ParseOpt bundles parsing options. The zero value is the default
// configuration: passthrough mode and DefaultMaxDepth.
type ParseOpt struct {
	Mode       UnknownPolicy
	MaxDepth   int // 0: DefaultMaxDepth, <0: unlimited.
	Strictness Strictness
	MaxBytes   int64 // Source size cap; 0 disables it.
	NumberMode NumberMode
	// OnWarning receives non-fatal source findings such as duplicate keys
	// under Strictness{OnDuplicateKey: Warn}.
	OnWarning func(*DecodeError)
}

func lastOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}

func (o ParseOpt) depthLimit() int {
	switch {
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	case o.MaxDepth < 0:
		return 0
	default:
		return o.MaxDepth
	}
}
