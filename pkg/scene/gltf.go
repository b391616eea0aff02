package scene

// glTF 2.0 document types, limited to what the exporter writes.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html

type gltfDocument struct {
	Asset          gltfAsset        `json:"asset"`
	ExtensionsUsed []string         `json:"extensionsUsed,omitempty"`
	Extensions     *gltfExtensions  `json:"extensions,omitempty"`
	Scene          int              `json:"scene"`
	Scenes         []gltfScene      `json:"scenes"`
	Nodes          []gltfNode       `json:"nodes"`
	Meshes         []gltfMesh       `json:"meshes,omitempty"`
	Accessors      []gltfAccessor   `json:"accessors,omitempty"`
	BufferViews    []gltfBufferView `json:"bufferViews,omitempty"`
	Buffers        []gltfBuffer     `json:"buffers,omitempty"`
	Materials      []gltfMaterial   `json:"materials,omitempty"`
	Textures       []gltfTexture    `json:"textures,omitempty"`
	Images         []gltfImage      `json:"images,omitempty"`
	Samplers       []gltfSampler    `json:"samplers,omitempty"`
}

type gltfAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

type gltfScene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes"`
}

type gltfNode struct {
	Name        string              `json:"name,omitempty"`
	Children    []int               `json:"children,omitempty"`
	Matrix      *[16]float32        `json:"matrix,omitempty"`
	Translation *[3]float32         `json:"translation,omitempty"`
	Mesh        *int                `json:"mesh,omitempty"`
	Extensions  *gltfNodeExtensions `json:"extensions,omitempty"`
}

type gltfMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

type gltfAccessor struct {
	BufferView    *int      `json:"bufferView,omitempty"`
	ByteOffset    int       `json:"byteOffset,omitempty"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Max           []float32 `json:"max,omitempty"`
	Min           []float32 `json:"min,omitempty"`
}

const (
	componentUnsignedShort = 5123
	componentUnsignedInt   = 5125
	componentFloat         = 5126
)

const (
	accessorScalar = "SCALAR"
	accessorVec2   = "VEC2"
	accessorVec3   = "VEC3"
)

type gltfBufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	Target     *int `json:"target,omitempty"`
}

const (
	targetArrayBuffer        = 34962
	targetElementArrayBuffer = 34963
)

type gltfBuffer struct {
	ByteLength int `json:"byteLength"`
}

type gltfMaterial struct {
	Name                 string                    `json:"name,omitempty"`
	PbrMetallicRoughness *gltfPbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	AlphaMode            string                    `json:"alphaMode,omitempty"`
	AlphaCutoff          *float32                  `json:"alphaCutoff,omitempty"`
	DoubleSided          bool                      `json:"doubleSided,omitempty"`
}

const (
	alphaBlend = "BLEND"
	alphaMask  = "MASK"
)

type gltfPbrMetallicRoughness struct {
	BaseColorFactor  *[4]float32      `json:"baseColorFactor,omitempty"`
	BaseColorTexture *gltfTextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32         `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float32         `json:"roughnessFactor,omitempty"`
}

type gltfTextureInfo struct {
	Index int `json:"index"`
}

type gltfTexture struct {
	Name    string `json:"name,omitempty"`
	Sampler *int   `json:"sampler,omitempty"`
	Source  *int   `json:"source,omitempty"`
}

type gltfImage struct {
	Name       string `json:"name,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

type gltfSampler struct {
	MagFilter *int `json:"magFilter,omitempty"`
	MinFilter *int `json:"minFilter,omitempty"`
	WrapS     *int `json:"wrapS,omitempty"`
	WrapT     *int `json:"wrapT,omitempty"`
}

const (
	filterLinear             = 9729
	filterLinearMipmapLinear = 9987
	wrapRepeat               = 10497
)

// KHR_lights_punctual
// Reference: https://github.com/KhronosGroup/glTF/tree/main/extensions/2.0/Khronos/KHR_lights_punctual

const extLightsPunctual = "KHR_lights_punctual"

type gltfExtensions struct {
	LightsPunctual *gltfLightsPunctual `json:"KHR_lights_punctual,omitempty"`
}

type gltfLightsPunctual struct {
	Lights []gltfLight `json:"lights"`
}

type gltfLight struct {
	Name      string          `json:"name,omitempty"`
	Type      string          `json:"type"`
	Color     *[3]float32     `json:"color,omitempty"`
	Intensity *float32        `json:"intensity,omitempty"`
	Range     *float32        `json:"range,omitempty"`
	Extras    *gltfLightExtra `json:"extras,omitempty"`
}

type gltfLightExtra struct {
	Decay float32 `json:"decay"`
}

type gltfNodeExtensions struct {
	LightsPunctual *gltfNodeLight `json:"KHR_lights_punctual,omitempty"`
}

type gltfNodeLight struct {
	Light int `json:"light"`
}

func ptr[T any](v T) *T {
	return &v
}
