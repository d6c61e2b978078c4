package workspace

// Job names, also used as metric labels.
const (
	JobRegistration  = "registration"
	JobRequireConfig = "require_config"
	JobWatch         = "watch"
)

// RegistrationPatterns locate registration.php of modules, themes and
// libraries, relative to a workspace root.
var RegistrationPatterns = []string{
	"app/code/*/*/registration.php",
	"app/design/*/*/*/registration.php",
	"vendor/*/*/registration.php",
	"vendor/*/*/src/registration.php",
	"lib/internal/*/*/registration.php",
	"lib/internal/*/*/*/registration.php",
}

// RequireConfigPatterns locate requirejs-config.js of module areas, themes,
// theme module overrides and the core library.
var RequireConfigPatterns = []string{
	"app/code/*/*/view/*/requirejs-config.js",
	"app/design/*/*/*/requirejs-config.js",
	"app/design/*/*/*/*_*/requirejs-config.js",
	"vendor/*/*/view/*/requirejs-config.js",
	"vendor/*/*/src/view/*/requirejs-config.js",
	"lib/web/requirejs-config.js",
}
