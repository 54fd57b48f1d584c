// Package auth provides user accounts and token authentication for the
// homecontrol API.
//
// Users belong to one of two groups, default and admin. Passwords are
// stored as Argon2id PHC strings and sessions are stateless HS256 JWT access
// tokens whose subject is the user ID. Authenticate re-reads the user on
// every request so deleting or deactivating an account takes effect
// immediately.
package auth
