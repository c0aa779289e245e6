// Package presenter puts CPU-rendered frames on screen through a WebGPU surface. Each frame is
// uploaded to a sampled texture and drawn with a single fullscreen triangle.
package presenter

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// blitShader draws the frame texture over the whole surface with one oversized triangle.
const blitShader = `
struct VertexOut {
	@builtin(position) position: vec4<f32>,
	@location(0) uv: vec2<f32>,
};

@group(0) @binding(0) var frameTexture: texture_2d<f32>;
@group(0) @binding(1) var frameSampler: sampler;

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOut {
	let uv = vec2<f32>(f32((index << 1u) & 2u), f32(index & 2u));
	var out: VertexOut;
	out.position = vec4<f32>(uv.x * 2.0 - 1.0, 1.0 - uv.y * 2.0, 0.0, 1.0);
	out.uv = uv;
	return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
	return textureSample(frameTexture, frameSampler, in.uv);
}
`

// PresentMode selects how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank.
	PresentModeVSync PresentMode = iota
	// PresentModeUncapped presents immediately.
	PresentModeUncapped
)

// Presenter shows RGBA frames in a window.
type Presenter interface {
	// Resize records a new surface size; the surface is reconfigured before the next frame.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Present uploads frame and draws it to the surface.
	//
	// Parameters:
	//   - frame: RGBA pixels, 4 bytes per pixel
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired or the frame is malformed
	Present(frame common.TextureStagingData) error

	// Release frees all GPU resources. The presenter must not be used afterwards.
	Release()
}

type presenter struct {
	mu     *sync.Mutex
	logger *slog.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	textureFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	clear         wgpu.Color
	forceFallback bool

	width, height int
	dirty         bool

	pipeline        *wgpu.RenderPipeline
	bindGroupLayout *wgpu.BindGroupLayout
	sampler         *wgpu.Sampler

	texture       *wgpu.Texture
	textureView   *wgpu.TextureView
	bindGroup     *wgpu.BindGroup
	textureWidth  uint32
	textureHeight uint32
}

var _ Presenter = &presenter{}

// NewPresenter creates a WebGPU device for the surface described by descriptor and builds the
// blit pipeline.
//
// Parameters:
//   - descriptor: the platform surface descriptor from the window
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: variadic list of PresenterBuilderOption functions
//
// Returns:
//   - Presenter: the new presenter
//   - error: an error if no adapter or device is available
func NewPresenter(descriptor *wgpu.SurfaceDescriptor, width, height int, options ...PresenterBuilderOption) (Presenter, error) {
	if descriptor == nil {
		return nil, fmt.Errorf("nil surface descriptor")
	}
	p := &presenter{
		mu:          &sync.Mutex{},
		logger:      slog.Default(),
		presentMode: wgpu.PresentModeFifo,
		clear:       wgpu.Color{R: 0.06, G: 0.07, B: 0.08, A: 1},
		width:       max(width, 1),
		height:      max(height, 1),
		dirty:       true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.logger = p.logger.With("component", "presenter")

	p.instance = wgpu.CreateInstance(nil)
	p.surface = p.instance.CreateSurface(descriptor)

	adapter, err := p.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: p.forceFallback,
		CompatibleSurface:    p.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	p.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Presenter Device"})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	p.device = device
	p.queue = device.GetQueue()

	p.pickFormats()
	if err := p.createPipeline(); err != nil {
		return nil, err
	}
	p.logger.Debug("presenter ready", "surfaceFormat", p.surfaceFormat, "width", p.width, "height", p.height)
	return p, nil
}

// pickFormats prefers an sRGB surface so that sRGB frame bytes round-trip unchanged. Without one
// the texture is sampled as plain unorm for the same effect.
func (p *presenter) pickFormats() {
	capabilities := p.surface.GetCapabilities(p.adapter)
	p.surfaceFormat = capabilities.Formats[0]
	p.textureFormat = wgpu.TextureFormatRGBA8Unorm
	for _, f := range capabilities.Formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			p.surfaceFormat = f
			p.textureFormat = wgpu.TextureFormatRGBA8UnormSrgb
			return
		}
	}
}

func (p *presenter) createPipeline() error {
	module, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Blit Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: blitShader},
	})
	if err != nil {
		return fmt.Errorf("create blit shader: %w", err)
	}
	defer module.Release()

	var textureEntry, samplerEntry wgpu.BindGroupLayoutEntry
	textureEntry.Binding = 0
	textureEntry.Visibility = wgpu.ShaderStageFragment
	textureEntry.Texture.SampleType = wgpu.TextureSampleTypeFloat
	textureEntry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	samplerEntry.Binding = 1
	samplerEntry.Visibility = wgpu.ShaderStageFragment
	samplerEntry.Sampler.Type = wgpu.SamplerBindingTypeFiltering

	p.bindGroupLayout, err = p.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Blit Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{textureEntry, samplerEntry},
	})
	if err != nil {
		return fmt.Errorf("create blit bind group layout: %w", err)
	}

	layout, err := p.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Blit",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.bindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("create blit pipeline layout: %w", err)
	}
	defer layout.Release()

	p.pipeline, err = p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Blit Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    p.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create blit pipeline: %w", err)
	}

	p.sampler, err = p.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Blit Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("create blit sampler: %w", err)
	}
	return nil
}

// configure applies the pending surface size. Caller must hold the mutex.
func (p *presenter) configure() {
	capabilities := p.surface.GetCapabilities(p.adapter)
	p.surface.Configure(p.adapter, p.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      p.surfaceFormat,
		Width:       uint32(p.width),
		Height:      uint32(p.height),
		PresentMode: p.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	p.dirty = false
}

// ensureTexture recreates the frame texture and its bind group when the frame size changes.
// Caller must hold the mutex.
func (p *presenter) ensureTexture(width, height uint32) error {
	if p.texture != nil && p.textureWidth == width && p.textureHeight == height {
		return nil
	}
	p.releaseTexture()

	tex, err := p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Frame Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        p.textureFormat,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("create frame texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("create frame texture view: %w", err)
	}
	bindGroup, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: p.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		view.Release()
		tex.Release()
		return fmt.Errorf("create frame bind group: %w", err)
	}

	p.texture, p.textureView, p.bindGroup = tex, view, bindGroup
	p.textureWidth, p.textureHeight = width, height
	return nil
}

// Caller must hold the mutex.
func (p *presenter) releaseTexture() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.textureView != nil {
		p.textureView.Release()
		p.textureView = nil
	}
	if p.texture != nil {
		p.texture.Release()
		p.texture = nil
	}
}

func (p *presenter) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if width <= 0 || height <= 0 {
		// minimized; keep the old configuration
		return
	}
	p.width, p.height = width, height
	p.dirty = true
}

func (p *presenter) Present(frame common.TextureStagingData) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frame.Width == 0 || frame.Height == 0 {
		return nil
	}
	if want := int(frame.Width) * int(frame.Height) * 4; len(frame.Pixels) < want {
		return fmt.Errorf("frame has %d bytes, want %d", len(frame.Pixels), want)
	}
	if p.dirty {
		p.configure()
	}
	if err := p.ensureTexture(frame.Width, frame.Height); err != nil {
		return err
	}

	p.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  p.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		frame.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  frame.Width * 4,
			RowsPerImage: frame.Height,
		},
		&wgpu.Extent3D{
			Width:              frame.Width,
			Height:             frame.Height,
			DepthOrArrayLayers: 1,
		},
	)

	surfaceTexture, err := p.surface.GetCurrentTexture()
	if err != nil {
		// usually an outdated surface after a resize
		p.dirty = true
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create surface view: %w", err)
	}
	defer view.Release()

	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: p.clear,
		}},
	})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish command encoder: %w", err)
	}
	p.queue.Submit(commandBuffer)
	commandBuffer.Release()

	p.surface.Present()
	return nil
}

func (p *presenter) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.releaseTexture()
	if p.sampler != nil {
		p.sampler.Release()
		p.sampler = nil
	}
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.device != nil {
		p.device.Release()
		p.device = nil
	}
	if p.surface != nil {
		p.surface.Release()
		p.surface = nil
	}
	if p.adapter != nil {
		p.adapter.Release()
		p.adapter = nil
	}
	if p.instance != nil {
		p.instance.Release()
		p.instance = nil
	}
}
