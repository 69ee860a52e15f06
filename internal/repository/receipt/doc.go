// Package receipt implements persistence for installation receipts.
//
// The FileRepository stores and loads the receipt as YAML inside the
// installation prefix and exposes a Repository interface that the
// installer depends on.
package receipt
