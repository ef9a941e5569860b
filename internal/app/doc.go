// Package app provides the application service layer.
//
// Orchestrates use cases: reaction classification, the kudos transfer/escrow workflow, account linking.
// Sits between platform adapters and domain repositories. Depends on domain interfaces, not concrete implementations.
package app
