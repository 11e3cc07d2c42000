package glapi

// GL enumerants used by the render device. Values match the Khronos registry so that
// implementations can pass them straight to the driver.
const (
	NONE  Enum = 0
	ZERO  Enum = 0
	ONE   Enum = 1
	FALSE      = 0
	TRUE       = 1

	// Buffer targets and usage.
	ARRAY_BUFFER         Enum = 0x8892
	ELEMENT_ARRAY_BUFFER Enum = 0x8893
	STREAM_DRAW          Enum = 0x88E0
	STATIC_DRAW          Enum = 0x88E4
	DYNAMIC_DRAW         Enum = 0x88E8

	// Texture targets, units and parameters.
	TEXTURE_2D                  Enum = 0x0DE1
	TEXTURE_CUBE_MAP            Enum = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X Enum = 0x8515
	TEXTURE0                    Enum = 0x84C0
	TEXTURE_MAG_FILTER          Enum = 0x2800
	TEXTURE_MIN_FILTER          Enum = 0x2801
	TEXTURE_WRAP_S              Enum = 0x2802
	TEXTURE_WRAP_T              Enum = 0x2803
	NEAREST                     Enum = 0x2600
	LINEAR                      Enum = 0x2601
	NEAREST_MIPMAP_NEAREST      Enum = 0x2700
	LINEAR_MIPMAP_LINEAR        Enum = 0x2703
	REPEAT                      Enum = 0x2901
	CLAMP_TO_EDGE               Enum = 0x812F
	MIRRORED_REPEAT             Enum = 0x8370

	// Pixel formats and component types.
	DEPTH_COMPONENT   Enum = 0x1902
	RED               Enum = 0x1903
	RGB               Enum = 0x1907
	RGBA              Enum = 0x1908
	RGB8              Enum = 0x8051
	RGBA8             Enum = 0x8058
	R8                Enum = 0x8229
	RGBA32F           Enum = 0x8814
	RGBA16F           Enum = 0x881A
	DEPTH_COMPONENT16 Enum = 0x81A5
	DEPTH_COMPONENT24 Enum = 0x81A6
	BYTE              Enum = 0x1400
	UNSIGNED_BYTE     Enum = 0x1401
	SHORT             Enum = 0x1402
	UNSIGNED_SHORT    Enum = 0x1403
	INT               Enum = 0x1404
	UNSIGNED_INT      Enum = 0x1405
	FLOAT             Enum = 0x1406
	HALF_FLOAT        Enum = 0x140B

	// Framebuffers.
	FRAMEBUFFER          Enum = 0x8D40
	RENDERBUFFER         Enum = 0x8D41
	COLOR_ATTACHMENT0    Enum = 0x8CE0
	DEPTH_ATTACHMENT     Enum = 0x8D00
	FRAMEBUFFER_COMPLETE Enum = 0x8CD5

	// Shaders and programs.
	FRAGMENT_SHADER   Enum = 0x8B30
	VERTEX_SHADER     Enum = 0x8B31
	COMPILE_STATUS    Enum = 0x8B81
	LINK_STATUS       Enum = 0x8B82
	ACTIVE_UNIFORMS   Enum = 0x8B86
	ACTIVE_ATTRIBUTES Enum = 0x8B89

	// Uniform and attribute types.
	FLOAT_VEC2   Enum = 0x8B50
	FLOAT_VEC3   Enum = 0x8B51
	FLOAT_VEC4   Enum = 0x8B52
	INT_VEC2     Enum = 0x8B53
	INT_VEC3     Enum = 0x8B54
	INT_VEC4     Enum = 0x8B55
	BOOL         Enum = 0x8B56
	BOOL_VEC2    Enum = 0x8B57
	BOOL_VEC3    Enum = 0x8B58
	BOOL_VEC4    Enum = 0x8B59
	FLOAT_MAT2   Enum = 0x8B5A
	FLOAT_MAT3   Enum = 0x8B5B
	FLOAT_MAT4   Enum = 0x8B5C
	SAMPLER_2D   Enum = 0x8B5E
	SAMPLER_CUBE Enum = 0x8B60

	// Capabilities.
	CULL_FACE    Enum = 0x0B44
	DEPTH_TEST   Enum = 0x0B71
	BLEND        Enum = 0x0BE2
	SCISSOR_TEST Enum = 0x0C11

	// Blend factors.
	SRC_COLOR           Enum = 0x0300
	SRC_ALPHA           Enum = 0x0302
	ONE_MINUS_SRC_ALPHA Enum = 0x0303
	DST_COLOR           Enum = 0x0306

	// Comparison functions.
	NEVER    Enum = 0x0200
	LESS     Enum = 0x0201
	EQUAL    Enum = 0x0202
	LEQUAL   Enum = 0x0203
	GREATER  Enum = 0x0204
	NOTEQUAL Enum = 0x0205
	GEQUAL   Enum = 0x0206
	ALWAYS   Enum = 0x0207

	// Faces.
	FRONT          Enum = 0x0404
	BACK           Enum = 0x0405
	FRONT_AND_BACK Enum = 0x0408

	// Clear bits.
	DEPTH_BUFFER_BIT Enum = 0x0100
	COLOR_BUFFER_BIT Enum = 0x4000

	// Primitive modes.
	POINTS         Enum = 0x0000
	LINES          Enum = 0x0001
	LINE_LOOP      Enum = 0x0002
	LINE_STRIP     Enum = 0x0003
	TRIANGLES      Enum = 0x0004
	TRIANGLE_STRIP Enum = 0x0005
	TRIANGLE_FAN   Enum = 0x0006

	// Limits and strings.
	MAX_TEXTURE_SIZE                 Enum = 0x0D33
	MAX_RENDERBUFFER_SIZE            Enum = 0x84E8
	MAX_DRAW_BUFFERS                 Enum = 0x8824
	MAX_VERTEX_ATTRIBS               Enum = 0x8869
	MAX_COMBINED_TEXTURE_IMAGE_UNITS Enum = 0x8B4D
	MAX_COLOR_ATTACHMENTS            Enum = 0x8CDF
	VENDOR                           Enum = 0x1F00
	RENDERER                         Enum = 0x1F01
	VERSION                          Enum = 0x1F02
	EXTENSIONS                       Enum = 0x1F03

	// Errors.
	NO_ERROR          Enum = 0
	INVALID_ENUM      Enum = 0x0500
	INVALID_VALUE     Enum = 0x0501
	INVALID_OPERATION Enum = 0x0502
	CONTEXT_LOST      Enum = 0x0507
)
