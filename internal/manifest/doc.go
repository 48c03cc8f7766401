// Package manifest loads module descriptor files. Descriptors are written in
// YAML (.yaml, .yml, .json) or HCL (.hcl); both decode into the same
// DescriptorFile shape, are validated against the embedded JSON schema, and
// convert into a rules.ModuleDescriptor.
package manifest
