package dashboard

import _ "embed"

// dashboardHTML is the page shell. It holds no logic of its own: it opens
// /ws and applies every frame (element text, classes, styles, toggles and
// chart samples) as it arrives.
//
//go:embed dashboard.html
var dashboardHTML string
