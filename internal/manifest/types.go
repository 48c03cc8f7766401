package manifest

// DescriptorFile is the on-disk form of a module descriptor. The same struct
// decodes from YAML and HCL; in HCL each native SDK is a labeled block:
//
//	native_sdk "Android" {
//	  name    = "play-core-native-sdk"
//	  library = "libplaycore.so"
//	}
type DescriptorFile struct {
	Name                string    `yaml:"name" json:"name" hcl:"name"`
	Description         string    `yaml:"description,omitempty" json:"description,omitempty" hcl:"description,optional"`
	Requires            string    `yaml:"requires,omitempty" json:"requires,omitempty" hcl:"requires,optional"`
	PublicIncludePaths  []string  `yaml:"public_include_paths,omitempty" json:"public_include_paths,omitempty" hcl:"public_include_paths,optional"`
	PrivateIncludePaths []string  `yaml:"private_include_paths,omitempty" json:"private_include_paths,omitempty" hcl:"private_include_paths,optional"`
	PublicDependencies  []string  `yaml:"public_dependencies,omitempty" json:"public_dependencies,omitempty" hcl:"public_dependencies,optional"`
	PrivateDependencies []string  `yaml:"private_dependencies,omitempty" json:"private_dependencies,omitempty" hcl:"private_dependencies,optional"`
	DynamicallyLoaded   []string  `yaml:"dynamically_loaded,omitempty" json:"dynamically_loaded,omitempty" hcl:"dynamically_loaded,optional"`
	NativeSDKs          []SDKFile `yaml:"native_sdks,omitempty" json:"native_sdks,omitempty" hcl:"native_sdk,block"`
}

// SDKFile declares a native SDK for one platform. Library is the file name
// used for every architecture; Libraries overrides it per architecture.
type SDKFile struct {
	Platform       string            `yaml:"platform" json:"platform" hcl:"platform,label"`
	Name           string            `yaml:"name" json:"name" hcl:"name"`
	ThirdPartyRoot string            `yaml:"third_party_root,omitempty" json:"third_party_root,omitempty" hcl:"third_party_root,optional"`
	IncludeDir     string            `yaml:"include_dir,omitempty" json:"include_dir,omitempty" hcl:"include_dir,optional"`
	LibDir         string            `yaml:"lib_dir,omitempty" json:"lib_dir,omitempty" hcl:"lib_dir,optional"`
	Library        string            `yaml:"library,omitempty" json:"library,omitempty" hcl:"library,optional"`
	Libraries      map[string]string `yaml:"libraries,omitempty" json:"libraries,omitempty" hcl:"libraries,optional"`
	ManifestFile   string            `yaml:"manifest_file" json:"manifest_file" hcl:"manifest_file"`
	PropertyKey    string            `yaml:"property_key" json:"property_key" hcl:"property_key"`
}
