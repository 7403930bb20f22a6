package app

import (
	authService "github.com/allisson/relay/internal/auth/service"
)

// AdminTokenService returns the service that hashes and verifies the admin bearer token.
func (c *Container) AdminTokenService() authService.AdminTokenService {
	c.adminTokenServiceInit.Do(func() {
		c.adminTokenService = authService.NewAdminTokenService()
	})
	return c.adminTokenService
}
