// Package user manages backend user accounts.
//
// Account administration requires the user management permission. Two
// self-referential edits get special handling: updating your own
// account reloads the permission set, since the grants may have
// changed, and deleting your own account ends the session.
package user
