// Package i18n holds the UI string resource bundle. A Bundle is built once at
// startup, passed by reference to the components that need it, and resolves
// keys through a fixed chain: selected language, its base language, the
// bundle's base language, then the raw key.
package i18n
