// Package scraper fetches the NCSL AI-legislation tracking page and parses
// its bill table.
//
// Fetching runs through an ordered list of strategies (headless Chrome with
// stealth patches, plain HTTP with browser-like headers); the first one to
// return a body wins. Parsing locates the legislation table by its header
// labels rather than document position, then maps table cells positionally:
// jurisdiction, bill number with an optional link, title, status, category,
// and an optional summary column.
package scraper
