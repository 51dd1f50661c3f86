package vulkan

import (
	vk "github.com/goki/vulkan"
)

type Fence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *Context, createSignaled bool) (*Fence, error) {
	fence := &Fence{IsSignaled: createSignaled}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if createSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var handle vk.Fence
	if err := check("vkCreateFence", vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	fence.Handle = handle
	return fence, nil
}

func (vf *Fence) Destroy(context *Context) {
	if vf.Handle != nil {
		vk.DestroyFence(context.Device.LogicalDevice, vf.Handle, context.Allocator)
		vf.Handle = nil
	}
	vf.IsSignaled = false
}

// Wait blocks until the fence is signaled or timeoutNs passes.
func (vf *Fence) Wait(context *Context, timeoutNs uint64) error {
	if vf.IsSignaled {
		return nil
	}
	if err := check("vkWaitForFences", vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, timeoutNs)); err != nil {
		return err
	}
	vf.IsSignaled = true
	return nil
}

func (vf *Fence) Reset(context *Context) error {
	if !vf.IsSignaled {
		return nil
	}
	if err := check("vkResetFences", vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle})); err != nil {
		return err
	}
	vf.IsSignaled = false
	return nil
}
