//go:build !fhtdebug
// +build !fhtdebug

package fht

const debug = false
