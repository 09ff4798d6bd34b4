// Package main Roster API
//
//	@title						Roster API
//	@version					1.0
//	@description				Multi-tenant account membership: rosters, roles and email invites.
//
//	@contact.name				Roster Maintainers
//
//	@license.name				Proprietary
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity token. Format: "Bearer {token}"
//
//	@tag.name					Accounts
//	@tag.description			Account creation
//
//	@tag.name					Members
//	@tag.description			Roster and role management
//
//	@tag.name					Invites
//	@tag.description			Email invitations
package main
