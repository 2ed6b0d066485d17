package renderer

// chunkVertexShader transforms terrain vertices. Terrain is z-up; the
// view-projection matrix supplied by the caller accounts for that.
const chunkVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uViewProj;

out vec3 vNormal;
out vec2 vTexCoord;
out float vHeight;

void main() {
    vNormal = aNormal;
    vTexCoord = aTexCoord;
    vHeight = aPosition.z;
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

// chunkFragmentShader shades by height with a faint per-tile checker so
// individual columns stay readable.
const chunkFragmentShader = `
#version 410 core

in vec3 vNormal;
in vec2 vTexCoord;
in float vHeight;

uniform vec3 uLightDir;
uniform vec3 uBaseColor;
uniform float uMaxHeight;

out vec4 FragColor;

void main() {
    vec3 n = length(vNormal) > 0.0 ? normalize(vNormal) : vec3(0.0, 0.0, 1.0);
    float diffuse = max(dot(n, normalize(-uLightDir)), 0.0);
    float h = clamp(vHeight / max(uMaxHeight, 1.0), 0.0, 1.0);
    vec2 cell = floor(vTexCoord);
    float checker = mod(cell.x + cell.y, 2.0) * 0.06;

    vec3 color = mix(uBaseColor * 0.6, uBaseColor, h) - checker;
    FragColor = vec4(color * (0.35 + 0.65 * diffuse), 1.0);
}
`
