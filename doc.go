// Package main is the motoworks-rbac command. It serves the permission engine of
// the motorcycle sales and service workshop over a JSON API and offers CLI
// commands to seed the catalog and to inspect the effective permissions of a user.
package main
