package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// Buffer is a host visible buffer kept mapped for its whole life.
type Buffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
	mapped unsafe.Pointer
}

func NewStagingBuffer(context *Context, size uint64) (*Buffer, error) {
	device := context.Device.LogicalDevice
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if err := check("vkCreateBuffer", vk.CreateBuffer(device, &createInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	b := &Buffer{Handle: handle, Size: size}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, handle, &requirements)
	requirements.Deref()

	index, err := context.FindMemoryIndex(requirements.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		b.Destroy(context)
		return nil, fmt.Errorf("staging buffer: %w", err)
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: index,
	}
	var memory vk.DeviceMemory
	if err := check("vkAllocateMemory", vk.AllocateMemory(device, &allocateInfo, context.Allocator, &memory)); err != nil {
		b.Destroy(context)
		return nil, err
	}
	b.Memory = memory

	if err := check("vkBindBufferMemory", vk.BindBufferMemory(device, handle, memory, 0)); err != nil {
		b.Destroy(context)
		return nil, err
	}
	var data unsafe.Pointer
	if err := check("vkMapMemory", vk.MapMemory(device, memory, 0, vk.DeviceSize(size), 0, &data)); err != nil {
		b.Destroy(context)
		return nil, err
	}
	b.mapped = data
	return b, nil
}

// Bytes exposes the mapped memory.
func (b *Buffer) Bytes() []byte {
	return unsafe.Slice((*byte)(b.mapped), b.Size)
}

func (b *Buffer) Destroy(context *Context) {
	device := context.Device.LogicalDevice
	if b.mapped != nil {
		vk.UnmapMemory(device, b.Memory)
		b.mapped = nil
	}
	if b.Handle != nil {
		vk.DestroyBuffer(device, b.Handle, context.Allocator)
		b.Handle = nil
	}
	if b.Memory != nil {
		vk.FreeMemory(device, b.Memory, context.Allocator)
		b.Memory = nil
	}
}
