// api/controller/controllers.go
package controller

// Controllers bundles the HTTP controllers for router wiring.
type Controllers struct {
	Resource *ResourceController
	Audit    *AuditController
}
