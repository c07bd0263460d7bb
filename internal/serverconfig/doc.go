// Package serverconfig loads layered server-configuration documents, resolves
// per-environment and per-server option sets against shared defaults, and
// validates the resolved result.
//
// It exposes Store for document persistence, Manager for resolution and
// validation workflows, and CommandBuilder for wiring the srvcfg Cobra
// commands that query the document.
package serverconfig
