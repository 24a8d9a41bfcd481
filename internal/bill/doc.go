// Package bill provides types and functions for tracking state AI legislation.
//
// The bill package handles bill representation, identification, and change
// detection through state-based diffing. Each bill is assigned a composite ID
// built from its jurisdiction and bill number, the only key that is stable
// across scrapes of the NCSL table. Two diff policies are supported: seen-id
// (notify on first appearance only) and snapshot (also notify when tracked
// fields of a known bill change).
package bill
