// Package assets embeds the web UI sources served by the compass daemon.
// The server minifies and assembles them into a single page at startup.
package assets

import _ "embed"

// IndexTemplate is the page template; CSS and JS are inlined into it.
//
//go:embed index.html.tpl
var IndexTemplate []byte

//go:embed style.css
var CSS []byte

//go:embed script.js
var JS []byte

//go:embed favicon.svg
var Favicon []byte
