// Package types defines the Store and Subscription interfaces, the inventory
// entity types, and standard errors for the Stockroom system.
package types
