package scene

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	gomath "math"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"go.uber.org/zap"

	"github.com/vpdb/server-sub007/pkg/formats"
	"github.com/vpdb/server-sub007/pkg/math"
	"github.com/vpdb/server-sub007/pkg/mesh"
)

var (
	// ErrExport is returned when the graph cannot be written. No output is
	// produced in that case.
	ErrExport = errors.New("scene export failed")

	// ErrTextureDropped is reported as a warning when an image cannot be
	// embedded; the material is written without a texture.
	ErrTextureDropped = errors.New("texture dropped")
)

// DefaultGenerator is written to asset.generator.
const DefaultGenerator = "vpxtool"

const defaultMaterialName = "default"

// ExportOptions controls ExportGLB.
type ExportOptions struct {
	// Scale converts table units to scene units; 0 means mesh.DefaultScale.
	Scale float32
	// EmbedTextures writes referenced table images into the document.
	EmbedTextures bool
	// Generator overrides DefaultGenerator.
	Generator string
	Logger    *zap.Logger
}

// Stats counts what went into a document.
type Stats struct {
	Nodes     int
	Meshes    int
	Lights    int
	Materials int
	Textures  int
	Triangles int
	Bytes     int
}

// Output is a written document.
type Output struct {
	GLB      []byte
	Warnings []error
	Stats    Stats
}

// RootMatrix maps table space (z up from the playfield) into glTF space
// (y up) and applies the unit scale.
func RootMatrix(scale float32) math.Matrix3D {
	return math.Matrix3D{
		{scale, 0, 0, 0},
		{0, 0, scale, 0},
		{0, scale, 0, 0},
		{0, 0, 0, 1},
	}
}

// ExportGLB writes the graph as a binary glTF document. Materials and images
// are resolved against t.
func ExportGLB(g *Graph, t *formats.Table, opts ExportOptions) (*Output, error) {
	if g == nil || t == nil {
		return nil, fmt.Errorf("%w: missing graph or table", ErrExport)
	}
	e := newExporter(t, opts)
	if err := e.build(g); err != nil {
		return nil, err
	}
	glb, err := e.encode()
	if err != nil {
		return nil, err
	}
	e.stats.Bytes = len(glb)
	return &Output{GLB: glb, Warnings: e.warnings, Stats: e.stats}, nil
}

type materialKey struct {
	material string
	image    string
	color    mesh.RGBA
	hasColor bool
}

type exporter struct {
	table *formats.Table
	opts  ExportOptions
	log   *zap.Logger

	doc    gltfDocument
	bin    []byte
	lights []gltfLight

	materials map[materialKey]int
	// textures maps lower-cased image names to texture indices; -1 marks
	// images that could not be embedded.
	textures map[string]int
	sampler  *int

	warnings []error
	stats    Stats
}

func newExporter(t *formats.Table, opts ExportOptions) *exporter {
	if opts.Scale == 0 {
		opts.Scale = mesh.DefaultScale
	}
	if opts.Generator == "" {
		opts.Generator = DefaultGenerator
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &exporter{
		table:     t,
		opts:      opts,
		log:       log,
		materials: make(map[materialKey]int),
		textures:  make(map[string]int),
		doc: gltfDocument{
			Asset: gltfAsset{Version: "2.0", Generator: opts.Generator},
		},
	}
}

func (e *exporter) warn(err error) {
	e.log.Warn("export warning", zap.Error(err))
	e.warnings = append(e.warnings, err)
}

func (e *exporter) addNode(n gltfNode) int {
	e.doc.Nodes = append(e.doc.Nodes, n)
	return len(e.doc.Nodes) - 1
}

func (e *exporter) build(g *Graph) error {
	matrix := RootMatrix(e.opts.Scale).ColumnMajor()
	root := e.addNode(gltfNode{Name: RootName, Matrix: &matrix})
	e.doc.Scenes = []gltfScene{{Name: g.Name, Nodes: []int{root}}}

	for _, grp := range g.Groups() {
		gi := e.addNode(gltfNode{Name: grp.Name})
		e.doc.Nodes[root].Children = append(e.doc.Nodes[root].Children, gi)
		for _, n := range grp.Nodes {
			ni, err := e.node(n)
			if err != nil {
				return fmt.Errorf("%w: %s/%s: %w", ErrExport, grp.Name, nodeName(n), err)
			}
			e.doc.Nodes[gi].Children = append(e.doc.Nodes[gi].Children, ni)
		}
		e.log.Debug("exported group",
			zap.String("group", grp.Name),
			zap.Int("nodes", len(grp.Nodes)))
	}
	e.stats.Nodes = len(e.doc.Nodes)
	return nil
}

func (e *exporter) node(n mesh.Node) (int, error) {
	switch {
	case n.Mesh != nil && n.Light != nil:
		return 0, errors.New("node has both a mesh and a light")
	case n.Mesh != nil:
		mi, err := e.mesh(n.Mesh)
		if err != nil {
			return 0, err
		}
		return e.addNode(gltfNode{Name: n.Mesh.Name, Mesh: &mi}), nil
	case n.Light != nil:
		li := e.light(n.Light)
		p := n.Light.Position
		return e.addNode(gltfNode{
			Name:        n.Light.Name,
			Translation: &[3]float32{p.X, p.Y, p.Z},
			Extensions:  &gltfNodeExtensions{LightsPunctual: &gltfNodeLight{Light: li}},
		}), nil
	}
	return 0, errors.New("node has neither a mesh nor a light")
}

func validateMesh(m *mesh.Mesh) error {
	n := len(m.Vertices)
	if n == 0 {
		return errors.New("mesh has no vertices")
	}
	if m.Indices == nil {
		if n%3 != 0 {
			return fmt.Errorf("%d vertices do not form triangles", n)
		}
		return nil
	}
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("%d indices do not form triangles", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d at %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

func (e *exporter) mesh(m *mesh.Mesh) (int, error) {
	if err := validateMesh(m); err != nil {
		return 0, err
	}
	mat, err := e.material(m)
	if err != nil {
		return 0, err
	}

	n := len(m.Vertices)
	pos := make([]byte, 0, n*12)
	nrm := make([]byte, 0, n*12)
	uv := make([]byte, 0, n*8)
	for _, v := range m.Vertices {
		pos = appendFloats(pos, v.X, v.Y, v.Z)
		nrm = appendFloats(nrm, v.Nx, v.Ny, v.Nz)
		uv = appendFloats(uv, v.Tu, v.Tv)
	}

	b := m.Bounds()
	prim := gltfPrimitive{
		Attributes: map[string]int{
			"POSITION": e.addAccessor(gltfAccessor{
				BufferView:    ptr(e.addView(pos, targetArrayBuffer)),
				ComponentType: componentFloat,
				Count:         n,
				Type:          accessorVec3,
				Min:           []float32{b.Min.X, b.Min.Y, b.Min.Z},
				Max:           []float32{b.Max.X, b.Max.Y, b.Max.Z},
			}),
			"NORMAL": e.addAccessor(gltfAccessor{
				BufferView:    ptr(e.addView(nrm, targetArrayBuffer)),
				ComponentType: componentFloat,
				Count:         n,
				Type:          accessorVec3,
			}),
			"TEXCOORD_0": e.addAccessor(gltfAccessor{
				BufferView:    ptr(e.addView(uv, targetArrayBuffer)),
				ComponentType: componentFloat,
				Count:         n,
				Type:          accessorVec2,
			}),
		},
		Material: &mat,
	}

	if m.Indices != nil {
		var data []byte
		component := componentUnsignedInt
		// the largest value of a component type is reserved
		if n <= gomath.MaxUint16 {
			component = componentUnsignedShort
			data = make([]byte, 0, len(m.Indices)*2)
			for _, idx := range m.Indices {
				data = binary.LittleEndian.AppendUint16(data, uint16(idx))
			}
		} else {
			data = make([]byte, 0, len(m.Indices)*4)
			for _, idx := range m.Indices {
				data = binary.LittleEndian.AppendUint32(data, idx)
			}
		}
		prim.Indices = ptr(e.addAccessor(gltfAccessor{
			BufferView:    ptr(e.addView(data, targetElementArrayBuffer)),
			ComponentType: component,
			Count:         len(m.Indices),
			Type:          accessorScalar,
		}))
	}

	e.doc.Meshes = append(e.doc.Meshes, gltfMesh{Name: m.Name, Primitives: []gltfPrimitive{prim}})
	e.stats.Meshes++
	e.stats.Triangles += m.TriangleCount()
	return len(e.doc.Meshes) - 1, nil
}

func appendFloats(b []byte, fs ...float32) []byte {
	for _, f := range fs {
		b = binary.LittleEndian.AppendUint32(b, gomath.Float32bits(f))
	}
	return b
}

// addView appends data to the binary buffer at a 4-byte boundary. A zero
// target leaves the view untargeted (images).
func (e *exporter) addView(data []byte, target int) int {
	for len(e.bin)%4 != 0 {
		e.bin = append(e.bin, 0)
	}
	view := gltfBufferView{ByteOffset: len(e.bin), ByteLength: len(data)}
	if target != 0 {
		view.Target = ptr(target)
	}
	e.bin = append(e.bin, data...)
	e.doc.BufferViews = append(e.doc.BufferViews, view)
	return len(e.doc.BufferViews) - 1
}

func (e *exporter) addAccessor(a gltfAccessor) int {
	e.doc.Accessors = append(e.doc.Accessors, a)
	return len(e.doc.Accessors) - 1
}

// material returns the material for a mesh, creating one per distinct
// material, image and color combination.
func (e *exporter) material(m *mesh.Mesh) (int, error) {
	key := materialKey{material: strings.ToLower(m.Material), image: strings.ToLower(m.Image)}
	if m.Color != nil {
		key.color, key.hasColor = *m.Color, true
	}
	if i, ok := e.materials[key]; ok {
		return i, nil
	}

	var mat gltfMaterial
	switch {
	case m.Color != nil:
		mat = colorMaterial(m.Name, *m.Color)
	case m.Material != "":
		tm := e.table.Material(m.Material)
		if tm == nil {
			return 0, fmt.Errorf("unknown material %q", m.Material)
		}
		mat = pbrMaterial(tm)
	default:
		mat = defaultMaterial()
	}

	if m.Image != "" {
		if tex, ok := e.texture(m.Image); ok {
			mat.PbrMetallicRoughness.BaseColorTexture = &gltfTextureInfo{Index: tex}
			mat.Name += ":" + m.Image
			if img := e.table.Image(m.Image); img != nil && img.AlphaTest > 0 && mat.AlphaMode == "" {
				mat.AlphaMode = alphaMask
				mat.AlphaCutoff = ptr(min(img.AlphaTest/255, 1))
			}
		}
	}

	e.doc.Materials = append(e.doc.Materials, mat)
	i := len(e.doc.Materials) - 1
	e.materials[key] = i
	e.stats.Materials++
	return i, nil
}

func clamp01(f float32) float32 {
	return max(0, min(f, 1))
}

func pbrMaterial(tm *formats.Material) gltfMaterial {
	c := tm.BaseColor.Linear()
	alpha := float32(1)
	if tm.IsOpacityActive {
		alpha = clamp01(tm.Opacity)
	}
	metallic := float32(0)
	if tm.IsMetal {
		metallic = 1
	}
	mat := gltfMaterial{
		Name: tm.Name,
		PbrMetallicRoughness: &gltfPbrMetallicRoughness{
			BaseColorFactor: &[4]float32{c[0], c[1], c[2], alpha},
			MetallicFactor:  ptr(metallic),
			// table materials store glossiness
			RoughnessFactor: ptr(clamp01(1 - tm.Roughness)),
		},
	}
	if alpha < 1 {
		mat.AlphaMode = alphaBlend
	}
	return mat
}

func colorMaterial(name string, c mesh.RGBA) gltfMaterial {
	mat := gltfMaterial{
		Name: name + ".color",
		PbrMetallicRoughness: &gltfPbrMetallicRoughness{
			BaseColorFactor: &[4]float32{c[0], c[1], c[2], c[3]},
			MetallicFactor:  ptr(float32(0)),
			RoughnessFactor: ptr(float32(1)),
		},
		DoubleSided: true,
	}
	if c[3] < 1 {
		mat.AlphaMode = alphaBlend
	}
	return mat
}

func defaultMaterial() gltfMaterial {
	return gltfMaterial{
		Name: defaultMaterialName,
		PbrMetallicRoughness: &gltfPbrMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
			MetallicFactor:  ptr(float32(0)),
			RoughnessFactor: ptr(float32(1)),
		},
	}
}

// texture returns the texture index for a table image.
func (e *exporter) texture(name string) (int, bool) {
	key := strings.ToLower(name)
	if i, ok := e.textures[key]; ok {
		return i, i >= 0
	}
	i := e.addTexture(name)
	e.textures[key] = i
	return i, i >= 0
}

func (e *exporter) addTexture(name string) int {
	if !e.opts.EmbedTextures {
		return -1
	}
	img := e.table.Image(name)
	if img == nil {
		e.warn(fmt.Errorf("%w: image %q not found", ErrTextureDropped, name))
		return -1
	}
	data, mime, err := textureData(img)
	if err != nil {
		e.warn(fmt.Errorf("%w: %w", ErrTextureDropped, err))
		return -1
	}

	view := e.addView(data, 0)
	e.doc.Images = append(e.doc.Images, gltfImage{Name: img.Name, MimeType: mime, BufferView: &view})
	e.doc.Textures = append(e.doc.Textures, gltfTexture{
		Name:    img.Name,
		Sampler: ptr(e.defaultSampler()),
		Source:  ptr(len(e.doc.Images) - 1),
	})
	e.stats.Textures++
	e.log.Debug("embedded texture",
		zap.String("image", img.Name),
		zap.String("mime", mime),
		zap.Int("bytes", len(data)))
	return len(e.doc.Textures) - 1
}

func (e *exporter) defaultSampler() int {
	if e.sampler == nil {
		e.doc.Samplers = append(e.doc.Samplers, gltfSampler{
			MagFilter: ptr(filterLinear),
			MinFilter: ptr(filterLinearMipmapLinear),
			WrapS:     ptr(wrapRepeat),
			WrapT:     ptr(wrapRepeat),
		})
		e.sampler = ptr(len(e.doc.Samplers) - 1)
	}
	return *e.sampler
}

// textureData returns embeddable image bytes. JPEG and PNG files are kept
// as they are; everything else is re-encoded as PNG.
func textureData(img *formats.Image) ([]byte, string, error) {
	if img.Raster == nil && len(img.Data) > 0 {
		kind, err := filetype.Match(img.Data)
		if err == nil && (kind == matchers.TypeJpeg || kind == matchers.TypePng) {
			return img.Data, kind.MIME.Value, nil
		}
	}
	pix, err := img.Decode()
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, pix); err != nil {
		return nil, "", fmt.Errorf("encoding image %q: %w", img.Name, err)
	}
	return buf.Bytes(), matchers.TypePng.MIME.Value, nil
}

func (e *exporter) light(l *mesh.Light) int {
	c := l.Color.Linear()
	gl := gltfLight{
		Name:      l.Name,
		Type:      "point",
		Color:     &c,
		Intensity: ptr(l.Intensity),
		Extras:    &gltfLightExtra{Decay: l.Decay},
	}
	if l.Distance > 0 {
		gl.Range = ptr(l.Distance)
	}
	e.lights = append(e.lights, gl)
	e.stats.Lights++
	return len(e.lights) - 1
}

func (e *exporter) encode() ([]byte, error) {
	if len(e.bin) > 0 {
		for len(e.bin)%4 != 0 {
			e.bin = append(e.bin, 0)
		}
		e.doc.Buffers = []gltfBuffer{{ByteLength: len(e.bin)}}
	}
	if len(e.lights) > 0 {
		e.doc.ExtensionsUsed = []string{extLightsPunctual}
		e.doc.Extensions = &gltfExtensions{LightsPunctual: &gltfLightsPunctual{Lights: e.lights}}
	}
	js, err := json.Marshal(&e.doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding document: %w", ErrExport, err)
	}
	return writeGLB(js, e.bin), nil
}
