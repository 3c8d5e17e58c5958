// Package dashboard serves the live dashboard's static assets.
//
// A minimal page is embedded in the binary. Pointing the handler at a
// directory serves a separately built dashboard instead, without a
// recompile. Unknown paths fall back to index.html so client-side routing
// keeps working.
package dashboard
