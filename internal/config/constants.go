package config

// SourceFileExt is the canonical Quill source extension.
const SourceFileExt = ".ql"

// SourceFileExtensions lists every extension the loader recognizes.
var SourceFileExtensions = []string{".ql"}

// ManifestFileName is the project manifest read from the module root.
const ManifestFileName = "quill.yaml"

// LanguageVersion is the language version this toolchain implements.
// Manifests may constrain it with a semver range (e.g. "^0.4").
const LanguageVersion = "0.4.2"

// ResultTypeName is the builtin infectious Result constructor.
const ResultTypeName = "Result"

// OkCtorName and ErrCtorName are the builtin Result constructors.
const (
	OkCtorName  = "Ok"
	ErrCtorName = "Err"
)

// AllErrorsPattern is the match pattern keyword that covers the tail of an
// error row without naming its cases.
const AllErrorsPattern = "all_errors"

// MaxSubstChase bounds substitution chain chasing. Chains longer than this
// indicate a solver bug; Apply stops making progress instead of looping.
const MaxSubstChase = 10000
