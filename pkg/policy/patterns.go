package policy

// Strict patterns only fire on injection shapes: keyword pairs, comment
// terminated payloads and tautologies. Isolated keywords in prose pass.
var defaultStrictPatterns = []PatternSource{
	{Name: "union_select", Expr: `(?i)\bunion\b(?:\s+all)?\s+select\b`},
	{Name: "select_from", Expr: `(?i)\bselect\s+(?:distinct\s+)?(?:\*|[\w.]+(?:\s*,\s*[\w.]+)*)\s+from\s+[\w.]+`},
	{Name: "insert_into", Expr: `(?i)\binsert\s+into\s+[\w.]+`},
	{Name: "delete_from", Expr: `(?i)\bdelete\s+from\s+[\w.]+`},
	{Name: "update_set", Expr: `(?i)\bupdate\s+[\w.]+\s+set\s+[\w.]+\s*=`},
	{Name: "ddl_statement", Expr: `(?i)\b(?:drop|truncate|alter|create)\s+(?:table|database|schema|view|index)\b`},
	{Name: "comment_terminated", Expr: `['";]\s*(?:--|#|/\*)`},
	{Name: "quoted_tautology", Expr: `(?i)['"]\s*(?:or|and)\s+['"]?\w+['"]?\s*(?:=|like)\s*['"]?\w+`},
	{Name: "numeric_tautology", Expr: `(?i)\b(?:or|and)\s+\d+\s*=\s*\d+`},
}

var defaultGeneralPatterns = []PatternSource{
	{Name: "sql_keyword", Expr: `(?i)\b(?:select|insert|update|delete|drop|create|alter|truncate|union|exec|execute|declare|merge|grant|revoke)\b`},
	{Name: "tautology", Expr: `(?i)\b(?:or|and)\s+['"]?\w+['"]?\s*=\s*['"]?\w+`},
	{Name: "quote_terminated", Expr: `(?i)['"]\s*(?:;|\)|(?:or|and)\s)`},
	{Name: "comment_marker", Expr: `/\*|\*/|--|#`},
}

var (
	defaultFreeTextFields      = []string{"content", "description", "message"}
	defaultStrictRoutePrefixes = []string{"/api/lectures", "/api/materials"}
	defaultIDFields            = []string{
		"id", "userId", "courseId", "lectureId", "materialId", "quizId",
		"questionId", "discussionId", "replyId", "instructorId", "studentId",
	}
	defaultEmailFields      = []string{"email"}
	defaultAllowedMIMETypes = []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
		"application/pdf",
		"text/plain",
		"video/mp4",
		"video/webm",
		"audio/mpeg",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}
)

const (
	DefaultMaxBodyBytes   int64 = 10 * 1024 * 1024
	DefaultMaxQueryParams       = 100
	DefaultMaxHeaderBytes       = 8 * 1024
	DefaultMaxFileBytes   int64 = 10 * 1024 * 1024
	DefaultMaxDepth             = 20
)
